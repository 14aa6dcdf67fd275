package client

import (
	"crypto/x509"
	"encoding/pem"
	"strings"
)

// HasValidCertificate reports whether the store already holds a usable
// certificate for domain. It is false when no file exists at the store's path
// for the domain, when the file does not parse as an X.509 certificate, when
// the file carries no private key material, when neither the subject common
// name nor the SAN list covers the domain (case-insensitively), or when the
// certificate expires at or before now. Absence of a valid certificate is an
// expected outcome, so none of these conditions surface as errors.
func (c *Client) HasValidCertificate(domain string) bool {
	if c.store == nil {
		return false
	}

	data, err := c.store.ReadFile(c.store.PathFor(domain))
	if err != nil {
		return false
	}

	cert, hasKey := parseCertificateFile(data)
	if cert == nil || !hasKey {
		return false
	}

	if !certificateCovers(cert, domain) {
		return false
	}

	return cert.NotAfter.After(c.now())
}

// parseCertificateFile decodes the PEM blocks of a stored certificate file,
// returning the first certificate found and whether the file also contains
// a private key block.
func parseCertificateFile(data []byte) (*x509.Certificate, bool) {
	var cert *x509.Certificate
	hasKey := false

	for block, rest := pem.Decode(data); block != nil; block, rest = pem.Decode(rest) {
		switch {
		case block.Type == "CERTIFICATE" && cert == nil:
			parsed, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, hasKey
			}
			cert = parsed
		case strings.HasSuffix(block.Type, "PRIVATE KEY"):
			hasKey = true
		}
	}

	return cert, hasKey
}

// certificateCovers reports whether the certificate's subject common name or
// one of its SAN DNS entries names the domain, compared lower-cased.
func certificateCovers(cert *x509.Certificate, domain string) bool {
	want := strings.ToLower(domain)
	if strings.ToLower(cert.Subject.CommonName) == want {
		return true
	}
	for _, san := range cert.DNSNames {
		if strings.ToLower(san) == want {
			return true
		}
	}
	return false
}
