// Command keygen prints fresh key material for AUTH_PRIMARY_KEY.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/aussiebroadwan/campus/pkg/cryptox"
)

func main() {
	size := flag.Int("bytes", cryptox.TokenSize256, "key length in bytes (minimum 32)")
	flag.Parse()

	if *size < cryptox.TokenSize256 {
		log.Fatalf("key length %d is below the HS256 minimum of %d bytes", *size, cryptox.TokenSize256)
	}

	key, err := cryptox.GenerateKeyMaterial(*size)
	if err != nil {
		log.Fatalf("failed to generate key: %v", err)
	}
	fmt.Println(key)
}
