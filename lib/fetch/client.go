package fetch

import (
	"context"
	"net/http"
	"recordscrape/lib/restyutil"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("recordscrape/fetch")

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type ClientOptions struct {
	// FollowRedirects makes the client follow up to 10 redirects, otherwise
	// any 3xx response is a TransportError.
	FollowRedirects  bool
	Timeout          time.Duration
	UserAgent        string
	CloudflareBypass bool
	// Output receives a dump of every request and response when not nil.
	Output restyutil.InstrumentOutput
}

// Client is a Fetcher backed by resty.
type Client struct {
	Http            *resty.Client
	followRedirects bool
}

func NewClient(opts ClientOptions) *Client {
	client := resty.New()

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	client.SetHeader("user-agent", userAgent)
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}

	if opts.FollowRedirects {
		client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))
	} else {
		client.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}))
	}

	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	restyutil.InstrumentClient(client, otel.Tracer("recordscrape/fetch/http"), opts.Output)

	return &Client{
		Http:            client,
		followRedirects: opts.FollowRedirects,
	}
}

func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	ctx, span := tracer.Start(ctx, "client:Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	res, err := c.Http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return "", &TransportError{URL: url, Err: err}
	}

	status := res.StatusCode()
	switch {
	case status >= 300 && status < 400:
		span.SetStatus(codes.Error, "redirected")
		return "", &TransportError{
			URL:        url,
			StatusCode: status,
			Redirect:   true,
			Location:   res.Header().Get("Location"),
		}
	case status < 200 || status >= 300:
		span.SetStatus(codes.Error, res.Status())
		return "", &TransportError{URL: url, StatusCode: status}
	}

	return res.String(), nil
}
