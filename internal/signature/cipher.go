package signature

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultSignatureParam is the query key used when the cipher carries no sp.
const DefaultSignatureParam = "signature"

// CipherParams are the members of a signatureCipher value.
type CipherParams struct {
	URL string // base stream URL, still missing its signature
	S   string // scrambled signature
	SP  string // query key the recovered signature goes under
}

// ParseCipher splits a form-encoded signatureCipher.
func ParseCipher(raw string) (CipherParams, error) {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return CipherParams{}, &Error{Kind: CipherMalformed, Err: err}
	}

	p := CipherParams{URL: values.Get("url"), S: values.Get("s"), SP: values.Get("sp")}
	if p.URL == "" {
		return CipherParams{}, &Error{Kind: CipherMalformed, Err: fmt.Errorf("missing url")}
	}
	if p.S == "" {
		return CipherParams{}, &Error{Kind: CipherMalformed, Err: fmt.Errorf("missing s")}
	}
	u, err := url.Parse(p.URL)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return CipherParams{}, &Error{Kind: CipherMalformed, Err: fmt.Errorf("invalid url %q", p.URL)}
	}
	if p.SP == "" {
		p.SP = DefaultSignatureParam
	}
	return p, nil
}

// SignedURL appends the recovered signature to the base URL. Existing query
// parameters keep their order.
func (p CipherParams) SignedURL(sig string) string {
	sep := "?"
	if strings.Contains(p.URL, "?") {
		sep = "&"
	}
	return p.URL + sep + url.QueryEscape(p.SP) + "=" + url.QueryEscape(sig)
}
