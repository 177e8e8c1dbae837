package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// NewSheetsService builds a Sheets client from a service-account key file.
func NewSheetsService(ctx context.Context, credentialsFile string) (*sheets.Service, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	return svc, nil
}

// NewSheetsServiceFromOAuth builds a Sheets client from an OAuth client
// secret and a previously provisioned token file. The token refreshes itself
// through its refresh token; running the interactive consent flow to create
// the file in the first place is outside this tool.
func NewSheetsServiceFromOAuth(ctx context.Context, clientSecretFile, tokenFile string) (*sheets.Service, error) {
	secret, err := os.ReadFile(clientSecretFile)
	if err != nil {
		return nil, fmt.Errorf("reading client secret: %w", err)
	}
	config, err := google.ConfigFromJSON(secret, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parsing client secret: %w", err)
	}

	tokenData, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("reading oauth token (authorize this app first to create it): %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("parsing oauth token: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx, &token)))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	return svc, nil
}
