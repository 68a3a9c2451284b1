// Package secrets abstracts credential retrieval. Production deployments
// read from Google Secret Manager (gcpsm subpackage); local runs use the
// environment-backed store.
package secrets

import "context"

// Store resolves named secrets. Implementations classify a missing secret
// with services.ErrSecretNotFound so client initialization can fail fast.
type Store interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// Well-known secret names shared by the secret store and the clients that
// consume them.
const (
	NameSheetsAPIToken     = "sheets_api_token"
	NameScriptAPIKey       = "openai_api_key"
	NameVideoAPIKey        = "heygen_api_key"
	NameYouTubeToken       = "youtube_access_token"
	NameInstagramToken     = "instagram_access_token"
	NameInstagramAccountID = "instagram_account_id"
	NamePinterestToken     = "pinterest_access_token"
	NamePinterestBoardID   = "pinterest_board_id"
	NameTwitterAccessToken = "twitter_access_token"
	NameAmazonAccessToken  = "amazon_access_token"
	NameAmazonClientID     = "amazon_client_id"
)
