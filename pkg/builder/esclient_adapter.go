package builder

import (
	"net/http"

	"github.com/elastic/go-elasticsearch/v7"

	"github.com/joeydtaylor/switchboard/pkg/internal/adapter/esclient"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

type ElasticsearchClient = esclient.Client

// NewElasticsearchClient creates a sink that bulk indexes payload documents.
func NewElasticsearchClient(options ...types.Option[*ElasticsearchClient]) (*ElasticsearchClient, error) {
	return esclient.NewClient(options...)
}

func ElasticsearchWithAddresses(addresses ...string) types.Option[*ElasticsearchClient] {
	return esclient.WithAddresses(addresses...)
}

func ElasticsearchWithBasicAuth(username, password string) types.Option[*ElasticsearchClient] {
	return esclient.WithBasicAuth(username, password)
}

func ElasticsearchWithAPIKey(key string) types.Option[*ElasticsearchClient] {
	return esclient.WithAPIKey(key)
}

func ElasticsearchWithCACert(pem []byte) types.Option[*ElasticsearchClient] {
	return esclient.WithCACert(pem)
}

func ElasticsearchWithTransport(rt http.RoundTripper) types.Option[*ElasticsearchClient] {
	return esclient.WithTransport(rt)
}

func ElasticsearchWithClient(es *elasticsearch.Client) types.Option[*ElasticsearchClient] {
	return esclient.WithESClient(es)
}

func ElasticsearchWithDefaultIndex(index string) types.Option[*ElasticsearchClient] {
	return esclient.WithDefaultIndex(index)
}

func ElasticsearchWithRefresh(refresh string) types.Option[*ElasticsearchClient] {
	return esclient.WithRefresh(refresh)
}

func ElasticsearchWithFlushBytes(n int) types.Option[*ElasticsearchClient] {
	return esclient.WithFlushBytes(n)
}

func ElasticsearchWithLogger(l ...types.Logger) types.Option[*ElasticsearchClient] {
	return esclient.WithLogger(l...)
}

func ElasticsearchWithComponentMetadata(name string, id string) types.Option[*ElasticsearchClient] {
	return esclient.WithComponentMetadata(name, id)
}
