// Package directory is the HTTP client for the external people directory.
// The directory is the system of record for persons, households, and their
// contact details; this service only references its records by opaque id.
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"eventsignup/internal/config"
)

const (
	maxAttempts  = 3
	retryBackoff = 250 * time.Millisecond
)

// Client talks to the directory service
type Client struct {
	baseURL string
	http    *http.Client
	observe func(d time.Duration)
}

// Observe registers a callback invoked with the duration of every attempt.
// Used to feed request latency into metrics.
func (c *Client) Observe(fn func(d time.Duration)) {
	c.observe = fn
}

// basicAuthTransport adds HTTP basic auth to every request
type basicAuthTransport struct {
	username string
	password string
	next     http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.SetBasicAuth(t.username, t.password)
	return t.next.RoundTrip(clone)
}

// NewClient creates a directory client. A bearer token takes precedence;
// otherwise basic credentials are used.
func NewClient(cfg *config.Config) *Client {
	var httpClient *http.Client

	if cfg.DirectoryToken != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.DirectoryToken})
		httpClient = oauth2.NewClient(context.Background(), src)
	} else {
		httpClient = &http.Client{
			Transport: &basicAuthTransport{
				username: cfg.DirectoryUsername,
				password: cfg.DirectoryPassword,
				next:     http.DefaultTransport,
			},
		}
	}

	httpClient.Timeout = cfg.DirectoryTimeout

	return &Client{
		baseURL: strings.TrimSuffix(cfg.DirectoryURL, "/"),
		http:    httpClient,
	}
}

// do sends one request with bounded retries. Network errors and 5xx
// responses are retried with backoff; 4xx responses are fatal immediately.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("directory: encode request: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryBackoff * time.Duration(attempt)):
			}
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return fmt.Errorf("directory: build request: %w", err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := c.http.Do(req)
		if c.observe != nil {
			c.observe(time.Since(start))
		}
		if err != nil {
			lastErr = fmt.Errorf("directory: %s %s: %w", method, path, err)
			continue
		}

		respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("directory: read response: %w", err)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if out == nil || len(respBody) == 0 {
				return nil
			}
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("directory: decode response: %w", err)
			}
			return nil
		}

		apiErr := &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
		if !apiErr.Retryable() {
			return apiErr
		}
		lastErr = apiErr
	}

	return lastErr
}

// FindPersonByEmail looks up the person owning an email address.
// Returns nil without error when the address is unknown.
func (c *Client) FindPersonByEmail(ctx context.Context, emailAddress string) (*Record[PersonAttributes], error) {
	var emails List[EmailAttributes]
	path := "/emails?where[address]=" + url.QueryEscape(emailAddress)
	if err := c.do(ctx, http.MethodGet, path, nil, &emails); err != nil {
		return nil, err
	}

	if len(emails.Data) == 0 {
		return nil, nil
	}

	var person Single[PersonAttributes]
	path = fmt.Sprintf("/emails/%s/person", url.PathEscape(emails.Data[0].ID))
	if err := c.do(ctx, http.MethodGet, path, nil, &person); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	return &person.Data, nil
}

// GetPerson fetches one person record
func (c *Client) GetPerson(ctx context.Context, id string) (*Record[PersonAttributes], error) {
	var person Single[PersonAttributes]
	if err := c.do(ctx, http.MethodGet, "/people/"+url.PathEscape(id), nil, &person); err != nil {
		return nil, err
	}
	return &person.Data, nil
}

// FindHouseholds lists the households a person belongs to
func (c *Client) FindHouseholds(ctx context.Context, personID string) ([]Record[HouseholdAttributes], error) {
	var houses List[HouseholdAttributes]
	path := fmt.Sprintf("/people/%s/households", url.PathEscape(personID))
	if err := c.do(ctx, http.MethodGet, path, nil, &houses); err != nil {
		return nil, err
	}
	return houses.Data, nil
}

// GetHousehold fetches one household, optionally side-loading its people
func (c *Client) GetHousehold(ctx context.Context, id string, includePeople bool) (*Single[HouseholdAttributes], error) {
	path := "/households/" + url.PathEscape(id)
	if includePeople {
		path += "?include=people"
	}

	var house Single[HouseholdAttributes]
	if err := c.do(ctx, http.MethodGet, path, nil, &house); err != nil {
		return nil, err
	}
	return &house, nil
}

// HouseholdPeople decodes the people side-loaded by GetHousehold
func HouseholdPeople(house *Single[HouseholdAttributes]) ([]Record[PersonAttributes], error) {
	return Related[PersonAttributes](house.Included, "Person")
}

// GetEmailsForPerson lists a person's email records
func (c *Client) GetEmailsForPerson(ctx context.Context, personID string) ([]Record[EmailAttributes], error) {
	var list List[EmailAttributes]
	path := fmt.Sprintf("/people/%s/emails", url.PathEscape(personID))
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

// GetPhonesForPerson lists a person's phone number records
func (c *Client) GetPhonesForPerson(ctx context.Context, personID string) ([]Record[PhoneAttributes], error) {
	var list List[PhoneAttributes]
	path := fmt.Sprintf("/people/%s/phone_numbers", url.PathEscape(personID))
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

// GetAddressesForPerson lists a person's street address records
func (c *Client) GetAddressesForPerson(ctx context.Context, personID string) ([]Record[AddressAttributes], error) {
	var list List[AddressAttributes]
	path := fmt.Sprintf("/people/%s/addresses", url.PathEscape(personID))
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

// CreatePerson creates a person record and returns its new id
func (c *Client) CreatePerson(ctx context.Context, attrs PersonAttributes) (string, error) {
	body := Single[PersonAttributes]{Data: Record[PersonAttributes]{Type: "Person", Attributes: attrs}}

	var created Single[PersonAttributes]
	if err := c.do(ctx, http.MethodPost, "/people", body, &created); err != nil {
		return "", err
	}
	return created.Data.ID, nil
}

// UpdatePerson updates a person record in place
func (c *Client) UpdatePerson(ctx context.Context, id string, attrs PersonAttributes) error {
	body := Single[PersonAttributes]{Data: Record[PersonAttributes]{Type: "Person", ID: id, Attributes: attrs}}
	return c.do(ctx, http.MethodPatch, "/people/"+url.PathEscape(id), body, nil)
}

// AddOrUpdateEmail creates the email record when recordID is empty,
// otherwise updates it. Returns the record id.
func (c *Client) AddOrUpdateEmail(ctx context.Context, personID, recordID string, attrs EmailAttributes) (string, error) {
	if recordID == "" {
		body := Single[EmailAttributes]{Data: Record[EmailAttributes]{Type: "Email", Attributes: attrs}}
		var created Single[EmailAttributes]
		path := fmt.Sprintf("/people/%s/emails", url.PathEscape(personID))
		if err := c.do(ctx, http.MethodPost, path, body, &created); err != nil {
			return "", err
		}
		return created.Data.ID, nil
	}

	body := Single[EmailAttributes]{Data: Record[EmailAttributes]{Type: "Email", ID: recordID, Attributes: attrs}}
	path := fmt.Sprintf("/people/%s/emails/%s", url.PathEscape(personID), url.PathEscape(recordID))
	if err := c.do(ctx, http.MethodPatch, path, body, nil); err != nil {
		return "", err
	}
	return recordID, nil
}

// AddOrUpdatePhone creates the phone record when recordID is empty,
// otherwise updates it. Returns the record id.
func (c *Client) AddOrUpdatePhone(ctx context.Context, personID, recordID string, attrs PhoneAttributes) (string, error) {
	if recordID == "" {
		body := Single[PhoneAttributes]{Data: Record[PhoneAttributes]{Type: "PhoneNumber", Attributes: attrs}}
		var created Single[PhoneAttributes]
		path := fmt.Sprintf("/people/%s/phone_numbers", url.PathEscape(personID))
		if err := c.do(ctx, http.MethodPost, path, body, &created); err != nil {
			return "", err
		}
		return created.Data.ID, nil
	}

	body := Single[PhoneAttributes]{Data: Record[PhoneAttributes]{Type: "PhoneNumber", ID: recordID, Attributes: attrs}}
	path := fmt.Sprintf("/people/%s/phone_numbers/%s", url.PathEscape(personID), url.PathEscape(recordID))
	if err := c.do(ctx, http.MethodPatch, path, body, nil); err != nil {
		return "", err
	}
	return recordID, nil
}

// AddOrUpdateAddress creates the address record when recordID is empty,
// otherwise updates it. Returns the record id.
func (c *Client) AddOrUpdateAddress(ctx context.Context, personID, recordID string, attrs AddressAttributes) (string, error) {
	if recordID == "" {
		body := Single[AddressAttributes]{Data: Record[AddressAttributes]{Type: "Address", Attributes: attrs}}
		var created Single[AddressAttributes]
		path := fmt.Sprintf("/people/%s/addresses", url.PathEscape(personID))
		if err := c.do(ctx, http.MethodPost, path, body, &created); err != nil {
			return "", err
		}
		return created.Data.ID, nil
	}

	body := Single[AddressAttributes]{Data: Record[AddressAttributes]{Type: "Address", ID: recordID, Attributes: attrs}}
	path := fmt.Sprintf("/people/%s/addresses/%s", url.PathEscape(personID), url.PathEscape(recordID))
	if err := c.do(ctx, http.MethodPatch, path, body, nil); err != nil {
		return "", err
	}
	return recordID, nil
}

// CreateHousehold creates a household with the given members and returns
// its new id
func (c *Client) CreateHousehold(ctx context.Context, name, primaryContactID string, memberIDs []string) (string, error) {
	members := make([]RelationshipData, 0, len(memberIDs))
	for _, id := range memberIDs {
		members = append(members, RelationshipData{Type: "Person", ID: id})
	}

	body := Single[HouseholdAttributes]{
		Data: Record[HouseholdAttributes]{
			Type:       "Household",
			Attributes: HouseholdAttributes{Name: name, PrimaryContactID: primaryContactID},
			Relationships: map[string]Relationship{
				"people": {Data: members},
			},
		},
	}

	var created Single[HouseholdAttributes]
	if err := c.do(ctx, http.MethodPost, "/households", body, &created); err != nil {
		return "", err
	}
	return created.Data.ID, nil
}

// UpdateHousehold updates a household's name and primary contact pointer
func (c *Client) UpdateHousehold(ctx context.Context, id, name, primaryContactID string) error {
	body := Single[HouseholdAttributes]{
		Data: Record[HouseholdAttributes]{
			Type:       "Household",
			ID:         id,
			Attributes: HouseholdAttributes{Name: name, PrimaryContactID: primaryContactID},
		},
	}
	return c.do(ctx, http.MethodPatch, "/households/"+url.PathEscape(id), body, nil)
}

// AddToHousehold adds a person to a household's membership
func (c *Client) AddToHousehold(ctx context.Context, householdID, personID string) error {
	body := map[string]RelationshipData{
		"data": {Type: "Person", ID: personID},
	}
	path := fmt.Sprintf("/households/%s/people", url.PathEscape(householdID))
	return c.do(ctx, http.MethodPost, path, body, nil)
}

// FindAddressesByZip lists address records matching a zip code
func (c *Client) FindAddressesByZip(ctx context.Context, zip string) ([]Record[AddressAttributes], error) {
	var list List[AddressAttributes]
	path := "/addresses?where[zip]=" + url.QueryEscape(zip)
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}
