package httpclient

import (
	"time"
)

// Config holds the settings of one client, in a form which can be decoded from a
// config file.  The zero value adds nothing to the defaults.
type Config struct {
	Timeout             time.Duration `mapstructure:"timeout" validate:"gte=0"`
	SkipVerify          bool          `mapstructure:"skip_verify"`
	ProxyURL            string        `mapstructure:"proxy_url" validate:"omitempty,url"`
	NoRedirects         bool          `mapstructure:"no_redirects"`
	MaxRedirects        int           `mapstructure:"max_redirects" validate:"gte=0"`
	MaxIdleConnsPerHost int           `mapstructure:"max_idle_conns_per_host" validate:"gte=0"`
	CookieJar           bool          `mapstructure:"cookie_jar"`
}

// Options returns the Options equivalent to c.  NoRedirects wins over MaxRedirects.
func (c Config) Options() []Option {
	var opts []Option
	if c.Timeout > 0 {
		opts = append(opts, Timeout(c.Timeout))
	}
	if c.SkipVerify {
		opts = append(opts, SkipVerify(true))
	}
	if c.ProxyURL != "" {
		opts = append(opts, ProxyURL(c.ProxyURL))
	}
	if c.MaxIdleConnsPerHost > 0 {
		opts = append(opts, MaxIdleConnsPerHost(c.MaxIdleConnsPerHost))
	}
	switch {
	case c.NoRedirects:
		opts = append(opts, NoRedirects())
	case c.MaxRedirects > 0:
		opts = append(opts, MaxRedirects(c.MaxRedirects))
	}
	if c.CookieJar {
		opts = append(opts, CookieJar(nil))
	}
	return opts
}
