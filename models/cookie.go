package models

// Cookie mirrors the browser-cookie objects stored in cookies.json.
// Attributes are passed through to the browser unchanged, except Name which
// is defaulted by the loader.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	URL      string  `json:"url,omitempty"`
	Domain   string  `json:"domain,omitempty"`
	Path     string  `json:"path,omitempty"`
	Expires  float64 `json:"expires,omitempty"`
	HTTPOnly bool    `json:"httpOnly,omitempty"`
	Secure   bool    `json:"secure,omitempty"`
	SameSite string  `json:"sameSite,omitempty"`
}

// DefaultName returns the name a cookie is registered under: its own name,
// else its domain, else "other".
func (c Cookie) DefaultName() string {
	switch {
	case c.Name != "":
		return c.Name
	case c.Domain != "":
		return c.Domain
	default:
		return "other"
	}
}
