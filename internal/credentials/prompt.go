package credentials

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

// PromptToken asks for a token twice without echo
func PromptToken(url string) (string, error) {
	first, err := readSecret(os.Stderr, fmt.Sprintf("Enter token for '%s': ", url))
	if err != nil {
		return "", err
	}
	second, err := readSecret(os.Stderr, "Confirm token: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errors.New("tokens do not match")
	}
	return first, nil
}

func readSecret(out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)

	// Prefer the controlling terminal so piped stdin still works
	fd := int(os.Stdin.Fd())
	if tty, err := os.Open("/dev/tty"); err == nil {
		defer tty.Close()
		fd = int(tty.Fd())
	}

	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", errors.Wrap(err, "failed to read token")
	}
	return string(secret), nil
}
