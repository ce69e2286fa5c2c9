// Package rest talks to the backend's plain request/response endpoints:
// account creation, profile update and mobile verification. None of
// these involve the duplex socket or correlation; they are ordinary
// HTTP calls.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"letstalk/internal/content"
	"letstalk/internal/models"
)

const (
	accountPath       = "/UserController"
	profileUpdatePath = "/ProfileUpdateController"
	verifyMobilePath  = "/MobileVerification"
	loginPath         = "/UserLoginController"
)

// Client calls the LetsTalk REST endpoints under one API base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Registration is the payload for account creation.
type Registration struct {
	FirstName    string
	LastName     string
	AboutMe      string
	CountryCode  string // calling code with leading "+"
	ContactNo    string
	ProfileImage models.Attachment
}

// Validate applies the client-side field rules before any bytes leave
// the device.
func (r Registration) Validate() error {
	if err := content.ValidateName(r.FirstName); err != nil {
		return fmt.Errorf("first name: %w", err)
	}
	if err := content.ValidateName(r.LastName); err != nil {
		return fmt.Errorf("last name: %w", err)
	}
	if err := content.ValidateAboutMe(r.AboutMe); err != nil {
		return err
	}
	if err := content.ValidateCountryCode(r.CountryCode); err != nil {
		return err
	}
	if err := content.ValidateContactNo(r.ContactNo); err != nil {
		return err
	}
	if r.ProfileImage.Content == nil {
		return fmt.Errorf("profile image is required")
	}
	return nil
}

// CreateAccount registers a new account. The response body is returned
// raw; its shape is owned by the backend.
func (c *Client) CreateAccount(ctx context.Context, reg Registration) (json.RawMessage, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	fields := map[string]string{
		"firstName":   reg.FirstName,
		"lastName":    reg.LastName,
		"aboutMe":     reg.AboutMe,
		"countryCode": reg.CountryCode,
		"contactNo":   reg.ContactNo,
	}
	return c.postMultipart(ctx, accountPath, fields, "profileImage", reg.ProfileImage)
}

// UpdateProfile updates names, about-me and optionally the avatar.
func (c *Client) UpdateProfile(ctx context.Context, userID, firstName, lastName, aboutMe string, image *models.Attachment) (json.RawMessage, error) {
	if err := content.ValidateName(firstName); err != nil {
		return nil, fmt.Errorf("first name: %w", err)
	}
	if err := content.ValidateName(lastName); err != nil {
		return nil, fmt.Errorf("last name: %w", err)
	}
	if err := content.ValidateAboutMe(aboutMe); err != nil {
		return nil, err
	}

	fields := map[string]string{
		"userId":    userID,
		"firstName": firstName,
		"lastName":  lastName,
		"aboutMe":   aboutMe,
	}
	if image == nil {
		return c.postMultipart(ctx, profileUpdatePath, fields, "", models.Attachment{})
	}
	return c.postMultipart(ctx, profileUpdatePath, fields, "profileImage", *image)
}

// VerifyMobile runs the sign-up mobile verification.
func (c *Client) VerifyMobile(ctx context.Context, mobile, countryCode string) (json.RawMessage, error) {
	return c.postVerification(ctx, verifyMobilePath, mobile, countryCode)
}

// VerifyLogin runs the sign-in mobile verification.
func (c *Client) VerifyLogin(ctx context.Context, mobile, countryCode string) (json.RawMessage, error) {
	return c.postVerification(ctx, loginPath, mobile, countryCode)
}

func (c *Client) postVerification(ctx context.Context, path, mobile, countryCode string) (json.RawMessage, error) {
	if err := content.ValidateContactNo(mobile); err != nil {
		return nil, err
	}
	if err := content.ValidateCountryCode(countryCode); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]string{
		"mobile":      mobile,
		"countryCode": countryCode,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) postMultipart(ctx context.Context, path string, fields map[string]string, fileField string, file models.Attachment) (json.RawMessage, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	for name, value := range fields {
		if err := form.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("build form: %w", err)
		}
	}
	if fileField != "" && file.Content != nil {
		name := file.Name
		if name == "" {
			name = "profile.png"
		}
		part, err := form.CreateFormFile(fileField, name)
		if err != nil {
			return nil, fmt.Errorf("build form: %w", err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	return c.do(req)
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s: status %d: %s", req.URL.Path, resp.StatusCode, bytes.TrimSpace(body))
	}
	return body, nil
}
