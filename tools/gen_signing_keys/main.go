package main

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Writes <role>_private.pem and <role>_public.pem for the receiver and sender
// identities, e.g.
//
//	go run ./tools/gen_signing_keys -out ./keys -alg ed25519
func main() {
	out := flag.String("out", "keys", "Output directory")
	alg := flag.String("alg", "ed25519", "Key type: ed25519, p256, p384 or rsa")
	force := flag.Bool("force", false, "Overwrite existing files")

	flag.Parse()

	if err := os.MkdirAll(*out, 0o700); err != nil {
		log.Fatalf("Failed to create %s: %v", *out, err)
	}

	for _, role := range []string{"receiver", "sender"} {
		priv, pub, err := generate(*alg)
		if err != nil {
			log.Fatalf("Failed to generate %s key: %v", role, err)
		}

		privPath := filepath.Join(*out, role+"_private.pem")
		pubPath := filepath.Join(*out, role+"_public.pem")

		if err := writePEM(privPath, "PRIVATE KEY", priv, 0o600, *force); err != nil {
			log.Fatal(err)
		}
		if err := writePEM(pubPath, "PUBLIC KEY", pub, 0o644, *force); err != nil {
			log.Fatal(err)
		}

		fmt.Printf("%s_PRIVATE_KEY_PATH=%s\n", envRole(role), privPath)
		fmt.Printf("%s_PUBLIC_KEY_PATH=%s\n", envRole(role), pubPath)
	}
}

func generate(alg string) (privDER []byte, pubDER []byte, err error) {
	var priv, pub any

	switch alg {
	case "ed25519":
		pk, sk, genErr := ed25519.GenerateKey(rand.Reader)
		priv, pub, err = sk, pk, genErr
	case "p256", "p384":
		curve := elliptic.P256()
		if alg == "p384" {
			curve = elliptic.P384()
		}
		sk, genErr := ecdsa.GenerateKey(curve, rand.Reader)
		if genErr == nil {
			priv, pub = sk, &sk.PublicKey
		}
		err = genErr
	case "rsa":
		sk, genErr := rsa.GenerateKey(rand.Reader, 2048)
		if genErr == nil {
			priv, pub = sk, &sk.PublicKey
		}
		err = genErr
	default:
		return nil, nil, fmt.Errorf("unsupported key type %q", alg)
	}
	if err != nil {
		return nil, nil, err
	}

	privDER, err = x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, nil, err
	}
	pubDER, err = x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, nil, err
	}

	return privDER, pubDER, nil
}

func writePEM(path string, blockType string, der []byte, perm os.FileMode, force bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}

	f, err := os.OpenFile(path, flags, perm)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return pem.Encode(f, &pem.Block{Type: blockType, Bytes: der})
}

func envRole(role string) string {
	if role == "sender" {
		return "SENDER"
	}
	return "RECEIVER"
}
