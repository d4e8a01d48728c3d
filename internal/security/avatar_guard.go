package security

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
)

// ErrInvalidAvatarLink はアバターURLが受け付けられないことを表す。
var ErrInvalidAvatarLink = errors.New("invalid avatar link")

// AvatarChecker はユーザーが登録するアバター画像URLを検証する。
type AvatarChecker interface {
	// Check はURLがhttp(s)で公開ホストを指していることを確認する。
	// プローブが有効な場合は実際にHEADリクエストを送り、画像が返ることも確認する。
	Check(ctx context.Context, rawURL string) error
}

// 内部ネットワークとみなすアドレス範囲。
// ホスト名の解決後のアドレスはsafeurlのDialerが検証する。
var internalPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("169.254.0.0/16"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("::1/128"),
	netip.MustParsePrefix("fc00::/7"),
	netip.MustParsePrefix("fe80::/10"),
}

type avatarChecker struct {
	// clientがnilの場合はHEADプローブを行わない。
	client *http.Client
}

// NewAvatarChecker はAvatarCheckerを生成する。
// probeがtrueの場合、SSRF対策済みのHTTPクライアントで画像の存在を確認する。
func NewAvatarChecker(probe bool, timeout time.Duration) *avatarChecker {
	if !probe {
		return &avatarChecker{}
	}
	return &avatarChecker{client: newSafeClient(timeout)}
}

// newSafeClient はプライベート・ループバック・リンクローカル宛ての接続を
// Dialerで拒否するHTTPクライアントを返す。
func newSafeClient(timeout time.Duration) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes("http", "https").
		SetAllowedPorts(80, 443).
		Build()
	return safeurl.Client(config).Client
}

// Check はアバターURLを検証する。空文字列はアバター未設定として許可する。
func (c *avatarChecker) Check(ctx context.Context, rawURL string) error {
	if rawURL == "" {
		return nil
	}
	if err := validatePublicURL(rawURL); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAvatarLink, err)
	}
	if c.client == nil {
		return nil
	}
	return c.probe(ctx, rawURL)
}

func (c *avatarChecker) probe(ctx context.Context, rawURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAvatarLink, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAvatarLink, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: unexpected status %d", ErrInvalidAvatarLink, resp.StatusCode)
	}
	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return fmt.Errorf("%w: not an image (%q)", ErrInvalidAvatarLink, resp.Header.Get("Content-Type"))
	}
	return nil
}

// validatePublicURL はDNS解決を伴わない静的な検証を行う。
func validatePublicURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	default:
		return fmt.Errorf("disallowed scheme: %q", parsed.Scheme)
	}

	host := parsed.Hostname()
	if host == "" {
		return errors.New("empty host")
	}
	if strings.EqualFold(host, "localhost") || strings.HasSuffix(strings.ToLower(host), ".localhost") {
		return fmt.Errorf("blocked host: %s", host)
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		addr = addr.Unmap()
		for _, p := range internalPrefixes {
			if p.Contains(addr) {
				return fmt.Errorf("blocked IP address: %s", addr)
			}
		}
	}
	return nil
}
