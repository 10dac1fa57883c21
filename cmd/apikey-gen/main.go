package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"

	"sbtc-heritage.backend/pkg/crypto"
)

func main() {
	hexLen := flag.Int("hex-len", 32, "random hex length (must be even)")
	flag.Parse()

	if err := validateHexLen(*hexLen); err != nil {
		log.Fatal(err)
	}

	raw, err := generateRandomHex(*hexLen)
	if err != nil {
		log.Fatalf("failed to generate api key: %v", err)
	}

	apiKey := fmt.Sprintf("hv_admin_%s", raw)
	hash, err := crypto.HashAPIKey(apiKey)
	if err != nil {
		log.Fatalf("failed to hash api key: %v", err)
	}

	fmt.Println("Generated admin API credentials")
	fmt.Printf("ADMIN_API_KEY=%s\n", apiKey)
	fmt.Printf("ADMIN_API_KEY_HASH=%s\n", hash)
}

func validateHexLen(n int) error {
	if n <= 0 || n%2 != 0 {
		return fmt.Errorf("invalid hex-len: %d (must be positive and even)", n)
	}
	return nil
}

func generateRandomHex(n int) (string, error) {
	b := make([]byte, n/2)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
