package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/autoyard/autoyard-backend/pkg/config"
)

// ErrNotFound means the provider has no user with that id.
var ErrNotFound = errors.New("identity user not found")

// Profile is the subset of the provider's user record mirrored locally.
type Profile struct {
	ExternalID string
	Name       string
	Email      string
	ImageURL   string
	Phone      string
}

type emailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

type phoneNumber struct {
	ID          string `json:"id"`
	PhoneNumber string `json:"phone_number"`
}

type userResponse struct {
	ID                    string         `json:"id"`
	FirstName             string         `json:"first_name"`
	LastName              string         `json:"last_name"`
	ImageURL              string         `json:"image_url"`
	PrimaryEmailAddressID string         `json:"primary_email_address_id"`
	PrimaryPhoneNumberID  string         `json:"primary_phone_number_id"`
	EmailAddresses        []emailAddress `json:"email_addresses"`
	PhoneNumbers          []phoneNumber  `json:"phone_numbers"`
}

// Client reads user profiles from the identity provider's backend API.
type Client struct {
	httpClient *resty.Client
}

func NewClient(cfg config.IdentityConfig) (*Client, error) {
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, errors.New("identity secret key is required")
	}
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.APIBaseURL, "/")).
		SetAuthToken(cfg.SecretKey).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		httpClient.SetTimeout(cfg.Timeout)
	}
	return &Client{httpClient: httpClient}, nil
}

// GetUser fetches one user by provider id.
func (c *Client) GetUser(ctx context.Context, externalID string) (Profile, error) {
	if strings.TrimSpace(externalID) == "" {
		return Profile{}, errors.New("external id is required")
	}

	var body userResponse
	res, err := c.httpClient.
		NewRequest().
		SetContext(ctx).
		SetPathParam("id", externalID).
		SetResult(&body).
		Get("/users/{id}")
	if err != nil {
		return Profile{}, fmt.Errorf("identity request: %w", err)
	}
	if res.StatusCode() == http.StatusNotFound {
		return Profile{}, ErrNotFound
	}
	if res.IsError() {
		return Profile{}, fmt.Errorf("identity request failed: %s %s (status: %d)", res.Request.Method, res.Request.URL, res.StatusCode())
	}

	return body.toProfile(), nil
}

func (u userResponse) toProfile() Profile {
	profile := Profile{
		ExternalID: u.ID,
		Name:       strings.TrimSpace(u.FirstName + " " + u.LastName),
		ImageURL:   u.ImageURL,
	}
	for _, email := range u.EmailAddresses {
		if profile.Email == "" || email.ID == u.PrimaryEmailAddressID {
			profile.Email = email.EmailAddress
		}
	}
	for _, phone := range u.PhoneNumbers {
		if profile.Phone == "" || phone.ID == u.PrimaryPhoneNumberID {
			profile.Phone = phone.PhoneNumber
		}
	}
	return profile
}
