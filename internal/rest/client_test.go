package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"letstalk/internal/models"
)

func validRegistration() Registration {
	return Registration{
		FirstName:    "Asha",
		LastName:     "Perera",
		AboutMe:      "I like long walks",
		CountryCode:  "+94",
		ContactNo:    "7012345678",
		ProfileImage: models.Attachment{Name: "me.png", Content: strings.NewReader("png")},
	}
}

func TestCreateAccount(t *testing.T) {
	var gotPath string
	var gotFields map[string]string
	var gotFile string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotFields = map[string]string{}
		for name, vals := range r.MultipartForm.Value {
			gotFields[name] = vals[0]
		}
		if files := r.MultipartForm.File["profileImage"]; len(files) > 0 {
			gotFile = files[0].Filename
		}
		_, _ = w.Write([]byte(`{"userId":42}`))
	}))
	defer srv.Close()

	body, err := New(srv.URL).CreateAccount(context.Background(), validRegistration())
	require.NoError(t, err)

	require.Equal(t, "/UserController", gotPath)
	require.Equal(t, "Asha", gotFields["firstName"])
	require.Equal(t, "+94", gotFields["countryCode"])
	require.Equal(t, "7012345678", gotFields["contactNo"])
	require.Equal(t, "me.png", gotFile)
	require.JSONEq(t, `{"userId":42}`, string(body))
}

func TestCreateAccount_ValidationStopsBeforeWire(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer srv.Close()
	c := New(srv.URL)

	tests := []struct {
		name   string
		mutate func(*Registration)
	}{
		{"short first name", func(r *Registration) { r.FirstName = "A" }},
		{"short about me", func(r *Registration) { r.AboutMe = "hi" }},
		{"bad country code", func(r *Registration) { r.CountryCode = "94" }},
		{"bad contact no", func(r *Registration) { r.ContactNo = "0123" }},
		{"missing image", func(r *Registration) { r.ProfileImage = models.Attachment{} }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reg := validRegistration()
			tc.mutate(&reg)
			_, err := c.CreateAccount(context.Background(), reg)
			require.Error(t, err)
		})
	}
	require.False(t, called)
}

func TestUpdateProfile_ImageOptional(t *testing.T) {
	var fileParts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ProfileUpdateController", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		fileParts = len(r.MultipartForm.File["profileImage"])
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()
	c := New(srv.URL)

	_, err := c.UpdateProfile(context.Background(), "42", "Asha", "Perera", "I like long walks", nil)
	require.NoError(t, err)
	require.Equal(t, 0, fileParts)

	img := &models.Attachment{Name: "new.png", Content: strings.NewReader("png")}
	_, err = c.UpdateProfile(context.Background(), "42", "Asha", "Perera", "I like long walks", img)
	require.NoError(t, err)
	require.Equal(t, 1, fileParts)
}

func TestVerifyMobile(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"verified":true}`))
	}))
	defer srv.Close()
	c := New(srv.URL)

	_, err := c.VerifyMobile(context.Background(), "7012345678", "+94")
	require.NoError(t, err)
	require.Equal(t, "/MobileVerification", gotPath)
	require.Equal(t, "7012345678", gotBody["mobile"])
	require.Equal(t, "+94", gotBody["countryCode"])

	_, err = c.VerifyLogin(context.Background(), "7012345678", "+94")
	require.NoError(t, err)
	require.Equal(t, "/UserLoginController", gotPath)
}

func TestClient_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "number already registered", http.StatusConflict)
	}))
	defer srv.Close()

	_, err := New(srv.URL).VerifyMobile(context.Background(), "7012345678", "+94")
	require.Error(t, err)
	require.ErrorContains(t, err, "status 409")
	require.ErrorContains(t, err, "number already registered")
}
