package builder

import (
	"net/http"
	"time"

	"github.com/joeydtaylor/switchboard/pkg/internal/adapter/sparqlclient"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

type SPARQLClient = sparqlclient.Client

// NewSPARQLClient creates a sink that replaces each record's statements in a triple store.
func NewSPARQLClient(options ...types.Option[*SPARQLClient]) (*SPARQLClient, error) {
	return sparqlclient.NewClient(options...)
}

func SPARQLWithUpdateEndpoint(endpoint string) types.Option[*SPARQLClient] {
	return sparqlclient.WithUpdateEndpoint(endpoint)
}

func SPARQLWithQueryEndpoint(endpoint string) types.Option[*SPARQLClient] {
	return sparqlclient.WithQueryEndpoint(endpoint)
}

// SPARQLWithGraph writes into a named graph instead of the default graph.
func SPARQLWithGraph(iri string) types.Option[*SPARQLClient] {
	return sparqlclient.WithGraph(iri)
}

func SPARQLWithHeader(key, value string) types.Option[*SPARQLClient] {
	return sparqlclient.WithHeader(key, value)
}

func SPARQLWithBasicAuth(username, password string) types.Option[*SPARQLClient] {
	return sparqlclient.WithBasicAuth(username, password)
}

func SPARQLWithBearerToken(token string) types.Option[*SPARQLClient] {
	return sparqlclient.WithBearerToken(token)
}

func SPARQLWithTimeout(d time.Duration) types.Option[*SPARQLClient] {
	return sparqlclient.WithTimeout(d)
}

func SPARQLWithHTTPClient(hc *http.Client) types.Option[*SPARQLClient] {
	return sparqlclient.WithHTTPClient(hc)
}

func SPARQLWithRecordsPerRequest(n int) types.Option[*SPARQLClient] {
	return sparqlclient.WithRecordsPerRequest(n)
}

// SPARQLWithYield pauses between the update requests of one batch.
func SPARQLWithYield(d time.Duration) types.Option[*SPARQLClient] {
	return sparqlclient.WithYield(d)
}

// SPARQLWithPinnedCertificate only accepts a server presenting the certificate at path.
func SPARQLWithPinnedCertificate(path string) types.Option[*SPARQLClient] {
	return sparqlclient.WithPinnedCertificate(path)
}

func SPARQLWithLogger(l ...types.Logger) types.Option[*SPARQLClient] {
	return sparqlclient.WithLogger(l...)
}

func SPARQLWithComponentMetadata(name string, id string) types.Option[*SPARQLClient] {
	return sparqlclient.WithComponentMetadata(name, id)
}
