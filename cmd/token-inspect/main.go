// token-inspect decodes a signed token's claims without verifying the
// signature and prints identity, expiry and remaining lifetime. Useful when
// debugging session-expiry complaints.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/PhucVu3008/koola-admin/internal/auth"
)

func main() {
	var raw string
	if len(os.Args) > 1 {
		raw = os.Args[1]
	} else {
		// Read the token from stdin so it does not end up in shell history.
		fmt.Fprintln(os.Stderr, "paste token:")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read token: %v\n", err)
			os.Exit(1)
		}
		raw = line
	}

	claims, err := auth.DecodeClaims(strings.TrimSpace(raw))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to decode token: %v\n", err)
		os.Exit(1)
	}

	now := time.Now()
	fmt.Printf("subject:   %d <%s>\n", claims.ID, claims.Email)
	for _, role := range claims.Roles {
		fmt.Printf("role:      %s\n", role.Name)
	}
	fmt.Printf("issued:    %s\n", time.Unix(claims.IssuedAt, 0).Local())
	fmt.Printf("expires:   %s\n", auth.ExpiresAt(claims).Local())
	fmt.Printf("remaining: %s\n", auth.TimeRemaining(claims, now).Round(time.Second))

	if auth.IsExpired(claims, now, auth.DefaultSkewBuffer) {
		fmt.Println("status:    expired")
	} else {
		fmt.Println("status:    usable")
	}
}
