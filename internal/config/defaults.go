package config

const (
	defaultDataDir   = "~/.local/share/reelforge"
	defaultVideosDir = "~/.local/share/reelforge/videos"
	defaultLogDir    = "~/.local/share/reelforge/logs"
	defaultStateFile = "~/.local/share/reelforge/state.json"
	defaultAPIBind   = "127.0.0.1:8080"

	defaultSheetsBaseURL        = "https://sheets.googleapis.com/v4"
	defaultSheetsTimeoutSeconds = 30

	defaultSecretsProvider = "env"
	defaultSecretsBaseURL  = "https://secretmanager.googleapis.com/v1"

	defaultScriptBaseURL        = "https://api.openai.com/v1/chat/completions"
	defaultScriptModel          = "gpt-4-turbo-preview"
	defaultScriptTemperature    = 0.7
	defaultScriptMaxTokens      = 500
	defaultScriptTimeoutSeconds = 60

	defaultVideoBaseURL         = "https://api.heygen.com/v2"
	defaultVideoAvatarID        = "default_avatar"
	defaultVideoVoiceID         = "en-US-JennyNeural"
	defaultVideoBackgroundColor = "#FFFFFF"
	defaultVideoWidth           = 1920
	defaultVideoHeight          = 1080
	defaultVideoPollSeconds     = 10
	defaultVideoMaxWaitSeconds  = 600

	defaultYouTubeUploadBaseURL = "https://www.googleapis.com/upload/youtube/v3"
	defaultYouTubeCategoryID    = "22"
	defaultYouTubePrivacy       = "public"

	defaultInstagramBaseURL     = "https://graph.facebook.com/v18.0"
	defaultInstagramPollSeconds = 10
	defaultInstagramMaxWait     = 300

	defaultPinterestBaseURL = "https://api.pinterest.com/v5"

	defaultTwitterUploadBaseURL = "https://upload.twitter.com/1.1"
	defaultTwitterAPIBaseURL    = "https://api.twitter.com/2"
	defaultTwitterPollSeconds   = 5
	defaultTwitterMaxWait       = 120

	defaultAdsBaseURL        = "https://advertising-api.amazon.com"
	defaultAdsReportType     = "spCampaigns"
	defaultAdsDaysBack       = 7
	defaultAdsPollSeconds    = 5
	defaultAdsMaxWaitSeconds = 300

	defaultProductsPerRun = 1
	defaultDelaySeconds   = 60

	defaultScheduleType          = "daily"
	defaultScheduleTime          = "09:00"
	defaultScheduleIntervalHours = 4

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			VideosDir: defaultVideosDir,
			LogDir:    defaultLogDir,
			StateFile: defaultStateFile,
			APIBind:   defaultAPIBind,
		},
		Sheets: Sheets{
			BaseURL:        defaultSheetsBaseURL,
			TimeoutSeconds: defaultSheetsTimeoutSeconds,
		},
		Secrets: Secrets{
			Provider: defaultSecretsProvider,
			BaseURL:  defaultSecretsBaseURL,
		},
		Script: Script{
			BaseURL:        defaultScriptBaseURL,
			Model:          defaultScriptModel,
			Temperature:    defaultScriptTemperature,
			MaxTokens:      defaultScriptMaxTokens,
			TimeoutSeconds: defaultScriptTimeoutSeconds,
		},
		Video: Video{
			BaseURL:             defaultVideoBaseURL,
			AvatarID:            defaultVideoAvatarID,
			VoiceID:             defaultVideoVoiceID,
			BackgroundColor:     defaultVideoBackgroundColor,
			Width:               defaultVideoWidth,
			Height:              defaultVideoHeight,
			PollIntervalSeconds: defaultVideoPollSeconds,
			MaxWaitSeconds:      defaultVideoMaxWaitSeconds,
		},
		Publish: Publish{
			YouTube: YouTube{
				Enabled:       true,
				UploadBaseURL: defaultYouTubeUploadBaseURL,
				CategoryID:    defaultYouTubeCategoryID,
				PrivacyStatus: defaultYouTubePrivacy,
			},
			Instagram: Instagram{
				Enabled:                  true,
				BaseURL:                  defaultInstagramBaseURL,
				ProcessingPollSeconds:    defaultInstagramPollSeconds,
				ProcessingMaxWaitSeconds: defaultInstagramMaxWait,
			},
			Pinterest: Pinterest{
				Enabled: true,
				BaseURL: defaultPinterestBaseURL,
			},
			Twitter: Twitter{
				Enabled:                  true,
				UploadBaseURL:            defaultTwitterUploadBaseURL,
				APIBaseURL:               defaultTwitterAPIBaseURL,
				ProcessingPollSeconds:    defaultTwitterPollSeconds,
				ProcessingMaxWaitSeconds: defaultTwitterMaxWait,
			},
		},
		Ads: Ads{
			BaseURL:             defaultAdsBaseURL,
			ReportType:          defaultAdsReportType,
			DaysBack:            defaultAdsDaysBack,
			PollIntervalSeconds: defaultAdsPollSeconds,
			MaxWaitSeconds:      defaultAdsMaxWaitSeconds,
		},
		Run: Run{
			ProductsPerRun: defaultProductsPerRun,
			DelaySeconds:   defaultDelaySeconds,
		},
		Schedule: Schedule{
			Type:          defaultScheduleType,
			Time:          defaultScheduleTime,
			IntervalHours: defaultScheduleIntervalHours,
			Times:         []string{"09:00", "15:00", "21:00"},
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
