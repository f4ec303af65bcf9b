package auth

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bgentry/go-netrc/netrc"
	"golang.org/x/term"
)

// ErrNoCredentials indicates the netrc file held no entry for the host
// and no interactive input was available.
var ErrNoCredentials = errors.New("auth: no credentials available for host")

// Credential is a host-scoped login/password pair.
type Credential struct {
	Host     string
	Login    string
	Password string
}

// Store resolves credentials for a host. It consults a netrc file
// first and falls back to interactive prompts when the file is absent
// or has no entry for the requested host. A missing file or entry is
// never a hard error; only an unusable interactive path is.
type Store struct {
	// Path is the netrc file location. Empty means $NETRC, then the
	// platform default under the user's home directory.
	Path string

	// Persist writes prompted credentials back to the netrc file.
	Persist bool

	// In and Out override the prompt streams. When In is nil the
	// prompt requires a terminal on stdin and reads the password with
	// echo disabled.
	In  io.Reader
	Out io.Writer
}

// DefaultNetrcPath returns the conventional per-user netrc location.
func DefaultNetrcPath() (string, error) {
	if env := os.Getenv("NETRC"); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	name := ".netrc"
	if runtime.GOOS == "windows" {
		name = "_netrc"
	}
	return filepath.Join(home, name), nil
}

func (s *Store) path() (string, error) {
	if s.Path != "" {
		return s.Path, nil
	}
	return DefaultNetrcPath()
}

// Lookup returns the credential for host, prompting when the netrc
// file has no matching machine entry.
func (s *Store) Lookup(host string) (*Credential, error) {
	path, err := s.path()
	if err != nil {
		return nil, err
	}

	if cred := lookupFile(path, host); cred != nil {
		return cred, nil
	}

	cred, err := s.prompt(host)
	if err != nil {
		return nil, err
	}
	if s.Persist {
		if err := s.save(path, cred); err != nil {
			return nil, fmt.Errorf("auth: persist credential: %w", err)
		}
	}
	return cred, nil
}

func lookupFile(path, host string) *Credential {
	n, err := netrc.ParseFile(path)
	if err != nil {
		return nil
	}
	m := n.FindMachine(host)
	if m == nil || m.Login == "" {
		return nil
	}
	return &Credential{Host: host, Login: m.Login, Password: m.Password}
}

func (s *Store) prompt(host string) (*Credential, error) {
	out := s.Out
	if out == nil {
		out = os.Stderr
	}

	if s.In != nil {
		reader := bufio.NewReader(s.In)
		fmt.Fprintf(out, "Username for %s: ", host)
		login, err := readLine(reader)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoCredentials, err)
		}
		fmt.Fprintf(out, "Password for %s: ", host)
		password, err := readLine(reader)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoCredentials, err)
		}
		return &Credential{Host: host, Login: login, Password: password}, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNoCredentials
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Fprintf(out, "Username for %s: ", host)
	login, err := readLine(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoCredentials, err)
	}

	fmt.Fprintf(out, "Password for %s: ", host)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoCredentials, err)
	}

	return &Credential{Host: host, Login: login, Password: string(secret)}, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("empty input")
	}
	return line, nil
}

func (s *Store) save(path string, cred *Credential) error {
	n, err := netrc.ParseFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		n, err = netrc.Parse(strings.NewReader(""))
		if err != nil {
			return err
		}
	}

	if m := n.FindMachine(cred.Host); m != nil && !m.IsDefault() {
		m.UpdateLogin(cred.Login)
		m.UpdatePassword(cred.Password)
	} else {
		n.NewMachine(cred.Host, cred.Login, cred.Password, "")
	}

	data, err := n.MarshalText()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
