package cbr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var twelve = decimal.NewFromInt(12)

// CBRClient fetches a central bank key rate used as the reference for loan
// simulations. The rate is a stand-in for a market consumer-loan rate: the
// margin (annual percentage points) is added on top of it.
type CBRClient struct {
	url    string
	margin decimal.Decimal
	client *http.Client
	log    *logrus.Logger
	ttl    time.Duration
	now    func() time.Time

	mu        sync.Mutex
	rate      decimal.Decimal
	fetchedAt time.Time
}

// NewCBRClient initializes a new CBR client; the rate is refetched at most once per ttl
func NewCBRClient(url string, margin decimal.Decimal, ttl time.Duration, log *logrus.Logger) *CBRClient {
	return &CBRClient{
		url:    url,
		margin: margin,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
		ttl: ttl,
		now: time.Now,
	}
}

// buildSOAPRequest creates a SOAP request for the key rate over the last 30 days
func (c *CBRClient) buildSOAPRequest() string {
	now := c.now()
	fromDate := now.AddDate(0, 0, -30).Format("2006-01-02")
	toDate := now.Format("2006-01-02")
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
		<soap12:Envelope xmlns:soap12="http://www.w3.org/2003/05/soap-envelope">
			<soap12:Body>
				<KeyRate xmlns="http://web.cbr.ru/">
					<fromDate>%s</fromDate>
					<ToDate>%s</ToDate>
				</KeyRate>
			</soap12:Body>
		</soap12:Envelope>`, fromDate, toDate)
}

// sendRequest posts the SOAP envelope and returns the raw body
func (c *CBRClient) sendRequest(ctx context.Context, soapRequest string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBufferString(soapRequest))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/soap+xml; charset=utf-8")
	req.Header.Set("SOAPAction", "http://web.cbr.ru/KeyRate")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	c.log.Debugf("CBR XML response: %s", string(body))
	return body, nil
}

// parseXMLResponse extracts the most recent key rate (first KR row)
func parseXMLResponse(rawBody []byte) (decimal.Decimal, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse XML: %w", err)
	}

	krElements := doc.FindElements("//diffgram/KeyRate/KR")
	if len(krElements) == 0 {
		return decimal.Zero, fmt.Errorf("no key rate data found in XML")
	}
	rateElement := krElements[0].FindElement("./Rate")
	if rateElement == nil {
		return decimal.Zero, fmt.Errorf("rate element not found in XML")
	}

	rate, err := decimal.NewFromString(rateElement.Text())
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse rate %q: %w", rateElement.Text(), err)
	}
	return rate, nil
}

// GetKeyRate retrieves the annual key rate plus the configured margin
func (c *CBRClient) GetKeyRate(ctx context.Context) (decimal.Decimal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.fetchedAt.IsZero() && c.now().Sub(c.fetchedAt) < c.ttl {
		return c.rate, nil
	}

	body, err := c.sendRequest(ctx, c.buildSOAPRequest())
	if err != nil {
		return decimal.Zero, err
	}
	rate, err := parseXMLResponse(body)
	if err != nil {
		return decimal.Zero, err
	}
	rate = rate.Add(c.margin)

	c.rate, c.fetchedAt = rate, c.now()
	c.log.Infof("Retrieved key rate: %s%% (including %s%% lender margin)", rate.StringFixed(2), c.margin.StringFixed(2))
	return rate, nil
}

// MonthlyRate is the annual reference rate spread evenly over twelve months, in percent
func (c *CBRClient) MonthlyRate(ctx context.Context) (decimal.Decimal, error) {
	annual, err := c.GetKeyRate(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return annual.Div(twelve).Round(4), nil
}
