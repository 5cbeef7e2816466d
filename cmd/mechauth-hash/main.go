// Command mechauth-hash generates the bcrypt hash for the owner password.
//
// The engine requires the hash to be precomputed; this covers the one-time
// migration from a plaintext-configured password. The password is read from
// stdin so it never appears in shell history:
//
//	echo -n 'owner-password' | mechauth-hash -cost 12
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mechtrack/mechauth/password"
)

func main() {
	cost := flag.Int("cost", 0, "bcrypt cost (0 selects the default)")
	flag.Parse()

	hasher, err := password.NewBcrypt(*cost)
	if err != nil {
		fmt.Fprintln(os.Stderr, "mechauth-hash:", err)
		os.Exit(1)
	}

	reader := bufio.NewReader(os.Stdin)
	plain, err := reader.ReadString('\n')
	if err != nil && plain == "" {
		fmt.Fprintln(os.Stderr, "mechauth-hash: reading password:", err)
		os.Exit(1)
	}
	plain = strings.TrimRight(plain, "\r\n")
	if plain == "" {
		fmt.Fprintln(os.Stderr, "mechauth-hash: empty password")
		os.Exit(1)
	}

	hash, err := hasher.Hash(plain)
	if err != nil {
		fmt.Fprintln(os.Stderr, "mechauth-hash:", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
