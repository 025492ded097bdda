package templates

import (
	"time"

	"github.com/oksasatya/go-ddd-task-manager/config"
)

// Brand carries the product fields every email shows.
type Brand struct {
	AppName     string
	CompanyName string
	AppURL      string
}

func BrandFromConfig(cfg *config.Config) Brand {
	return Brand{AppName: cfg.AppName, CompanyName: cfg.CompanyName, AppURL: cfg.AppURL}
}

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

// NewBaseEmailData fills the common fields from b, then applies opts.
func NewBaseEmailData(b Brand, typ, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:        name,
		Email:       email,
		Type:        typ,
		CompanyName: b.CompanyName,
		AppName:     b.AppName,
		AppURL:      b.AppURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewWelcomeData(b Brand, name, email string, opts ...Option) map[string]any {
	return ToMap(NewBaseEmailData(b, Welcome, name, email, opts...))
}
