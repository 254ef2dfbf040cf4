package sparqlclient

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"os"
)

var errPinMismatch = errors.New("sparqlclient: TLS certificate pinning check failed")

// pinnedTransport accepts a verified chain only when it contains the pinned certificate.
func pinnedTransport(pinned []byte) http.RoundTripper {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.TLSClientConfig = &tls.Config{
		MinVersion: tls.VersionTLS12,
		VerifyPeerCertificate: func(_ [][]byte, verifiedChains [][]*x509.Certificate) error {
			for _, chain := range verifiedChains {
				for _, cert := range chain {
					if bytes.Equal(cert.Raw, pinned) {
						return nil
					}
				}
			}
			return errPinMismatch
		},
	}
	return t
}

func loadCertificate(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sparqlclient: read certificate: %w", err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("sparqlclient: no PEM certificate in %s", path)
	}
	return block.Bytes, nil
}
