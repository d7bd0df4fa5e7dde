// Command admin-key prints the hash of an admin API key for the
// admin.key_hash setting (SHOP_ADMIN_KEY_HASH).
package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/handler"
)

func main() {
	var (
		key      string
		pepper   string
		generate bool
	)

	flag.StringVar(&key, "key", "", "admin API key to hash (or SHOP_ADMIN_KEY env)")
	flag.StringVar(&pepper, "pepper", "", "HMAC pepper (or SHOP_ADMIN_PEPPER env)")
	flag.BoolVar(&generate, "generate", false, "generate a random key and print it with its hash")
	flag.Parse()

	if key == "" {
		key = os.Getenv("SHOP_ADMIN_KEY")
	}
	if pepper == "" {
		pepper = os.Getenv("SHOP_ADMIN_PEPPER")
	}
	if pepper == "" {
		slog.Warn("pepper is empty: the hash only depends on the key")
	}

	if generate {
		var err error
		if key, err = randomKey(); err != nil {
			slog.Error("generate key failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		fmt.Printf("key:  %s\n", key)
	}
	if key == "" {
		slog.Error("API key is required: set --key, SHOP_ADMIN_KEY or --generate")
		os.Exit(1)
	}

	fmt.Printf("hash: %s\n", handler.HashKey(key, pepper))
}

func randomKey() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "read random")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
