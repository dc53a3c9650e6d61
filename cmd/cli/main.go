// Command dktube is a CLI client for the dk-tube gRPC API.
package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/pflag"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/ncontiero/dk-tube-sub000/internal/api"
)

// ---- token store ----

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "dktube")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "dktube")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func saveToken(tok string, exp time.Time) error {
	if err := os.MkdirAll(cfgDir(), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(tokenPath(), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(tokenFile{AccessToken: tok, ExpiresAt: exp})
}

func loadToken() (string, error) {
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", err
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return "", err
	}
	if tf.AccessToken == "" || (!tf.ExpiresAt.IsZero() && time.Now().After(tf.ExpiresAt)) {
		return "", errors.New("no valid token (login required)")
	}
	return tf.AccessToken, nil
}

// tokenExpiry reads exp without verifying the signature; the server does that.
func tokenExpiry(raw string) time.Time {
	var claims jwt.RegisteredClaims
	_, _, err := jwt.NewParser().ParseUnverified(raw, &claims)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// resolveToken prefers the flag, then DKTUBE_TOKEN, then the saved token.
func resolveToken(flagVal string) string {
	if flagVal != "" {
		return flagVal
	}
	if v := os.Getenv("DKTUBE_TOKEN"); v != "" {
		return v
	}
	tok, _ := loadToken()
	return tok
}

// ---- grpc dial ----

type bearerCreds struct {
	token  string
	secure bool
}

func (b bearerCreds) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	return map[string]string{"authorization": "Bearer " + b.token}, nil
}
func (b bearerCreds) RequireTransportSecurity() bool { return b.secure }

type dialOptions struct {
	caPath    string
	skipCheck bool
	plaintext bool
}

func loadTLS(o dialOptions) (credentials.TransportCredentials, error) {
	if o.plaintext {
		return insecure.NewCredentials(), nil
	}
	if o.skipCheck {
		return credentials.NewTLS(&tls.Config{InsecureSkipVerify: true}), nil
	}
	if o.caPath == "" {
		return credentials.NewClientTLSFromCert(nil, ""), nil
	}
	pem, err := os.ReadFile(o.caPath)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.New("bad CA cert")
	}
	return credentials.NewTLS(&tls.Config{RootCAs: pool}), nil
}

func dial(addr string, o dialOptions, bearer string, extra ...grpc.DialOption) (*grpc.ClientConn, *api.TubeClient, error) {
	creds, err := loadTLS(o)
	if err != nil {
		return nil, nil, err
	}
	opts := []grpc.DialOption{grpc.WithTransportCredentials(creds)}
	if bearer != "" {
		opts = append(opts, grpc.WithPerRPCCredentials(bearerCreds{token: bearer, secure: !o.plaintext}))
	}
	opts = append(opts, extra...)
	cc, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, nil, err
	}
	return cc, api.NewTubeClient(cc), nil
}

// ---- utils ----

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func describeErr(err error) string {
	if s, ok := status.FromError(err); ok {
		return fmt.Sprintf("rpc error: code=%s msg=%s", s.Code(), s.Message())
	}
	return err.Error()
}

const usageText = `dktube CLI
Usage:
  dktube [--addr HOST:PORT] [--cacert file | --insecure | --plaintext] [--token T] <cmd> [args]

Commands:
  version
  login           --token <jwt>                  (saves token)
  logout
  me
  playlists                                      (watch later, liked, then yours)
  channel         --user <uuid>                  (public playlists of a channel)
  show            --ref <WL|LL|uuid>
  create          --name <n> [--visibility public|private] [--video <uuid>]
  rename          --id <uuid> --name <n> [--visibility public|private]
  rm-playlist     --id <uuid>
  toggle|add|remove --ref <WL|LL|uuid> --video <uuid>
  videos          --user <uuid>
  video           --id <uuid>
  upload          --media <id|url> --title <t>
  rm-video        --id <uuid>
  search          --q <query> [--limit n]
  history
  watch           --video <uuid> --seconds <n>
  forget          --video <uuid>
  clear-history
`

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run parses global flags, dials the server and dispatches one command.
func run(args []string, stdout, stderr io.Writer, extra ...grpc.DialOption) int {
	fs := pflag.NewFlagSet("dktube", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usageText) }

	addr := fs.String("addr", "localhost:8443", "server addr")
	var o dialOptions
	fs.StringVar(&o.caPath, "cacert", "", "CA cert (PEM)")
	fs.BoolVar(&o.skipCheck, "insecure", false, "skip cert verify (dev)")
	fs.BoolVar(&o.plaintext, "plaintext", false, "connect without TLS (dev)")
	tokenFlag := fs.String("token", "", "bearer token (default $DKTUBE_TOKEN or saved login)")
	timeout := fs.Duration("timeout", 30*time.Second, "per-command timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return 2
	}
	name, rest := fs.Arg(0), fs.Args()[1:]

	switch name {
	case "version":
		fmt.Fprintf(stdout, "dktube %s (%s)\n", version, buildDate)
		return 0
	case "login":
		return report(stderr, login(rest, stdout))
	case "logout":
		if err := os.Remove(tokenPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
			return report(stderr, err)
		}
		fmt.Fprintln(stdout, "ok")
		return 0
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", name)
		fs.Usage()
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cc, cli, err := dial(*addr, o, resolveToken(*tokenFlag), extra...)
	if err != nil {
		return report(stderr, err)
	}
	defer cc.Close()

	return report(stderr, cmd(ctx, cli, rest, stdout))
}

func report(stderr io.Writer, err error) int {
	if err == nil {
		return 0
	}
	fmt.Fprintln(stderr, describeErr(err))
	return 1
}

func login(args []string, stdout io.Writer) error {
	fs := pflag.NewFlagSet("login", pflag.ContinueOnError)
	tok := fs.String("token", "", "identity token")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *tok == "" {
		return errors.New("need --token")
	}
	exp := tokenExpiry(*tok)
	if !exp.IsZero() && time.Now().After(exp) {
		return errors.New("token already expired")
	}
	if err := saveToken(*tok, exp); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "ok")
	return nil
}

func required(name, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("need --%s", name)
	}
	return nil
}
