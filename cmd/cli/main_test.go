package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/ncontiero/dk-tube-sub000/internal/api"
)

func withTmpConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return filepath.Join(dir, "dktube")
}

func Test_cfgDir_And_Paths(t *testing.T) {
	base := withTmpConfig(t)
	if got := cfgDir(); got != base {
		t.Fatalf("cfgDir=%q, want %q", got, base)
	}
	if !strings.HasPrefix(tokenPath(), base) || !strings.HasSuffix(tokenPath(), "token.json") {
		t.Fatalf("tokenPath unexpected: %s", tokenPath())
	}
}

func Test_token_SaveLoad(t *testing.T) {
	_ = withTmpConfig(t)

	if _, err := loadToken(); err == nil {
		t.Fatalf("expected error when token file missing")
	}
	if err := saveToken("tok", time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("saveToken: %v", err)
	}
	tok, err := loadToken()
	if err != nil || tok != "tok" {
		t.Fatalf("loadToken: tok=%q err=%v", tok, err)
	}
	if err := saveToken("tok2", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("saveToken expired: %v", err)
	}
	if _, err := loadToken(); err == nil {
		t.Fatalf("want error for expired token")
	}
	if err := saveToken("forever", time.Time{}); err != nil {
		t.Fatalf("saveToken no exp: %v", err)
	}
	if tok, err := loadToken(); err != nil || tok != "forever" {
		t.Fatalf("token without exp should load: %q %v", tok, err)
	}
}

func Test_tokenExpiry(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user_1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if got := tokenExpiry(raw); !got.Equal(exp) {
		t.Fatalf("tokenExpiry=%v, want %v", got, exp)
	}
	if got := tokenExpiry("garbage"); !got.IsZero() {
		t.Fatalf("garbage token should have zero expiry, got %v", got)
	}
}

func Test_resolveToken(t *testing.T) {
	_ = withTmpConfig(t)
	t.Setenv("DKTUBE_TOKEN", "")

	if got := resolveToken(""); got != "" {
		t.Fatalf("no token anywhere, got %q", got)
	}
	_ = saveToken("saved", time.Now().Add(time.Hour))
	if got := resolveToken(""); got != "saved" {
		t.Fatalf("want saved token, got %q", got)
	}
	t.Setenv("DKTUBE_TOKEN", "env")
	if got := resolveToken(""); got != "env" {
		t.Fatalf("env should beat saved token, got %q", got)
	}
	if got := resolveToken("flag"); got != "flag" {
		t.Fatalf("flag should win, got %q", got)
	}
}

func Test_printJSON_WritesPretty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printJSON(&buf, map[string]any{"a": 1})

	var m map[string]any
	if json.Unmarshal(buf.Bytes(), &m) != nil || m["a"] != float64(1) {
		t.Fatalf("printJSON produced invalid json: %s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("\n  ")) {
		t.Fatalf("printJSON should indent")
	}
}

func Test_bearerCreds_Metadata(t *testing.T) {
	t.Parallel()

	b := bearerCreds{token: "T", secure: true}
	md, err := b.GetRequestMetadata(context.Background())
	if err != nil {
		t.Fatalf("GetRequestMetadata: %v", err)
	}
	if md["authorization"] != "Bearer T" {
		t.Fatalf("auth header mismatch: %v", md)
	}
	if !b.RequireTransportSecurity() {
		t.Fatalf("bearerCreds over TLS must require transport security")
	}
	if (bearerCreds{token: "T"}).RequireTransportSecurity() {
		t.Fatalf("plaintext bearerCreds must not require transport security")
	}
}

func Test_loadTLS_Variants(t *testing.T) {
	t.Parallel()

	for _, o := range []dialOptions{{plaintext: true}, {skipCheck: true}, {}} {
		creds, err := loadTLS(o)
		if err != nil || creds == nil {
			t.Fatalf("loadTLS(%+v): %v %v", o, creds, err)
		}
	}

	tmp := filepath.Join(t.TempDir(), "bad.pem")
	_ = os.WriteFile(tmp, []byte("not pem"), 0o600)
	creds, err := loadTLS(dialOptions{caPath: tmp})
	if err == nil || creds != nil {
		t.Fatalf("bad CA should error, got creds=%v err=%v", creds, err)
	}
}

// ---- end to end over bufconn ----

type fakeTube struct {
	api.UnimplementedTubeServer
	lastToggle *api.MembershipRequest
}

func (f *fakeTube) Me(ctx context.Context, _ *api.Empty) (*api.MeResponse, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	if got := md.Get("authorization"); len(got) != 1 || got[0] != "Bearer T" {
		return nil, status.Error(codes.Unauthenticated, "no auth")
	}
	return &api.MeResponse{User: api.User{ID: "u1", Username: "alice"}}, nil
}

func (f *fakeTube) ToggleMembership(_ context.Context, req *api.MembershipRequest) (*api.ToggleMembershipResponse, error) {
	f.lastToggle = req
	return &api.ToggleMembershipResponse{Added: true}, nil
}

func (f *fakeTube) SearchVideos(_ context.Context, req *api.SearchVideosRequest) (*api.ListVideosResponse, error) {
	if req.Limit < 0 {
		return nil, status.Error(codes.InvalidArgument, "bad limit")
	}
	return &api.ListVideosResponse{Videos: []api.Video{{ID: "v1", Title: req.Query}}}, nil
}

func (f *fakeTube) ClearHistory(context.Context, *api.Empty) (*api.ClearHistoryResponse, error) {
	return &api.ClearHistoryResponse{Removed: 3}, nil
}

func startBuf(t *testing.T) (*fakeTube, grpc.DialOption) {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	ft := &fakeTube{}
	api.RegisterTubeServer(s, ft)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(func() { s.Stop(); _ = lis.Close() })

	return ft, grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	})
}

func runCLI(t *testing.T, dialer grpc.DialOption, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	base := []string{"--addr", "passthrough:///bufnet", "--plaintext", "--token", "T"}
	code := run(append(base, args...), &stdout, &stderr, dialer)
	return code, stdout.String(), stderr.String()
}

func Test_run_Commands(t *testing.T) {
	ft, dialer := startBuf(t)

	code, out, errOut := runCLI(t, dialer, "me")
	if code != 0 || !strings.Contains(out, `"alice"`) {
		t.Fatalf("me: code=%d out=%q err=%q", code, out, errOut)
	}

	code, out, _ = runCLI(t, dialer, "toggle", "--ref", "WL", "--video", "v1")
	if code != 0 || strings.TrimSpace(out) != "added" {
		t.Fatalf("toggle: code=%d out=%q", code, out)
	}
	if ft.lastToggle == nil || ft.lastToggle.Ref != "WL" || ft.lastToggle.VideoID != "v1" {
		t.Fatalf("toggle request not forwarded: %+v", ft.lastToggle)
	}

	code, out, _ = runCLI(t, dialer, "search", "--q", "cats")
	if code != 0 || !strings.Contains(out, `"cats"`) {
		t.Fatalf("search: code=%d out=%q", code, out)
	}

	code, out, _ = runCLI(t, dialer, "clear-history")
	if code != 0 || strings.TrimSpace(out) != "removed 3" {
		t.Fatalf("clear-history: code=%d out=%q", code, out)
	}
}

func Test_run_Errors(t *testing.T) {
	_, dialer := startBuf(t)

	code, _, errOut := runCLI(t, dialer, "search", "--limit=-1")
	if code != 1 || !strings.Contains(errOut, "InvalidArgument") {
		t.Fatalf("want rpc error, got code=%d err=%q", code, errOut)
	}

	code, _, errOut = runCLI(t, dialer, "history")
	if code != 1 || !strings.Contains(errOut, "Unimplemented") {
		t.Fatalf("want Unimplemented, got code=%d err=%q", code, errOut)
	}

	code, _, errOut = runCLI(t, dialer, "toggle", "--ref", "WL")
	if code != 1 || !strings.Contains(errOut, "need --video") {
		t.Fatalf("want missing flag error, got code=%d err=%q", code, errOut)
	}

	code, _, _ = runCLI(t, dialer, "nope")
	if code != 2 {
		t.Fatalf("unknown command should exit 2, got %d", code)
	}

	var stdout, stderr bytes.Buffer
	if code := run(nil, &stdout, &stderr); code != 2 {
		t.Fatalf("no command should exit 2, got %d", code)
	}
}

func Test_run_LoginLogout(t *testing.T) {
	_ = withTmpConfig(t)

	var stdout, stderr bytes.Buffer
	if code := run([]string{"login"}, &stdout, &stderr); code != 1 {
		t.Fatalf("login without token should fail, got %d", code)
	}
	if code := run([]string{"login", "--token", "opaque"}, &stdout, &stderr); code != 0 {
		t.Fatalf("login: %d %s", code, stderr.String())
	}
	if tok, err := loadToken(); err != nil || tok != "opaque" {
		t.Fatalf("saved token: %q %v", tok, err)
	}
	if code := run([]string{"logout"}, &stdout, &stderr); code != 0 {
		t.Fatalf("logout: %d %s", code, stderr.String())
	}
	if _, err := os.Stat(tokenPath()); !os.IsNotExist(err) {
		t.Fatalf("token file should be gone: %v", err)
	}
}

func Test_run_Version(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	if code := run([]string{"version"}, &stdout, &stderr); code != 0 {
		t.Fatalf("version exit %d", code)
	}
	if !strings.HasPrefix(stdout.String(), "dktube ") {
		t.Fatalf("version output: %q", stdout.String())
	}
}
