package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSheets()
	c.normalizeSecrets()
	c.normalizeVendors()
	c.normalizeRun()
	c.normalizeSchedule()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.VideosDir) == "" {
		c.Paths.VideosDir = defaultVideosDir
	}
	if c.Paths.VideosDir, err = expandPath(c.Paths.VideosDir); err != nil {
		return fmt.Errorf("paths.videos_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateFile) == "" {
		c.Paths.StateFile = defaultStateFile
	}
	if c.Paths.StateFile, err = expandPath(c.Paths.StateFile); err != nil {
		return fmt.Errorf("paths.state_file: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	return nil
}

func (c *Config) normalizeSheets() {
	c.Sheets.SpreadsheetID = strings.TrimSpace(c.Sheets.SpreadsheetID)
	if strings.TrimSpace(c.Sheets.BaseURL) == "" {
		c.Sheets.BaseURL = defaultSheetsBaseURL
	}
	c.Sheets.BaseURL = strings.TrimRight(strings.TrimSpace(c.Sheets.BaseURL), "/")
	if c.Sheets.TimeoutSeconds <= 0 {
		c.Sheets.TimeoutSeconds = defaultSheetsTimeoutSeconds
	}
}

func (c *Config) normalizeSecrets() {
	c.Secrets.Provider = strings.ToLower(strings.TrimSpace(c.Secrets.Provider))
	if c.Secrets.Provider == "" {
		c.Secrets.Provider = defaultSecretsProvider
	}
	c.Secrets.GCPProjectID = strings.TrimSpace(c.Secrets.GCPProjectID)
	if strings.TrimSpace(c.Secrets.BaseURL) == "" {
		c.Secrets.BaseURL = defaultSecretsBaseURL
	}
	c.Secrets.BaseURL = strings.TrimRight(strings.TrimSpace(c.Secrets.BaseURL), "/")
}

func (c *Config) normalizeVendors() {
	if strings.TrimSpace(c.Script.BaseURL) == "" {
		c.Script.BaseURL = defaultScriptBaseURL
	}
	if strings.TrimSpace(c.Script.Model) == "" {
		c.Script.Model = defaultScriptModel
	}
	if c.Script.MaxTokens <= 0 {
		c.Script.MaxTokens = defaultScriptMaxTokens
	}
	if c.Script.TimeoutSeconds <= 0 {
		c.Script.TimeoutSeconds = defaultScriptTimeoutSeconds
	}

	if strings.TrimSpace(c.Video.BaseURL) == "" {
		c.Video.BaseURL = defaultVideoBaseURL
	}
	c.Video.BaseURL = strings.TrimRight(strings.TrimSpace(c.Video.BaseURL), "/")
	if strings.TrimSpace(c.Video.AvatarID) == "" {
		c.Video.AvatarID = defaultVideoAvatarID
	}
	if strings.TrimSpace(c.Video.VoiceID) == "" {
		c.Video.VoiceID = defaultVideoVoiceID
	}
	if c.Video.Width <= 0 {
		c.Video.Width = defaultVideoWidth
	}
	if c.Video.Height <= 0 {
		c.Video.Height = defaultVideoHeight
	}
	if c.Video.PollIntervalSeconds <= 0 {
		c.Video.PollIntervalSeconds = defaultVideoPollSeconds
	}
	if c.Video.MaxWaitSeconds <= 0 {
		c.Video.MaxWaitSeconds = defaultVideoMaxWaitSeconds
	}

	trimBase := func(value, fallback string) string {
		trimmed := strings.TrimRight(strings.TrimSpace(value), "/")
		if trimmed == "" {
			return fallback
		}
		return trimmed
	}
	c.Publish.YouTube.UploadBaseURL = trimBase(c.Publish.YouTube.UploadBaseURL, defaultYouTubeUploadBaseURL)
	if strings.TrimSpace(c.Publish.YouTube.CategoryID) == "" {
		c.Publish.YouTube.CategoryID = defaultYouTubeCategoryID
	}
	if strings.TrimSpace(c.Publish.YouTube.PrivacyStatus) == "" {
		c.Publish.YouTube.PrivacyStatus = defaultYouTubePrivacy
	}
	c.Publish.Instagram.BaseURL = trimBase(c.Publish.Instagram.BaseURL, defaultInstagramBaseURL)
	if c.Publish.Instagram.ProcessingPollSeconds <= 0 {
		c.Publish.Instagram.ProcessingPollSeconds = defaultInstagramPollSeconds
	}
	if c.Publish.Instagram.ProcessingMaxWaitSeconds <= 0 {
		c.Publish.Instagram.ProcessingMaxWaitSeconds = defaultInstagramMaxWait
	}
	c.Publish.Pinterest.BaseURL = trimBase(c.Publish.Pinterest.BaseURL, defaultPinterestBaseURL)
	c.Publish.Twitter.UploadBaseURL = trimBase(c.Publish.Twitter.UploadBaseURL, defaultTwitterUploadBaseURL)
	c.Publish.Twitter.APIBaseURL = trimBase(c.Publish.Twitter.APIBaseURL, defaultTwitterAPIBaseURL)
	if c.Publish.Twitter.ProcessingPollSeconds <= 0 {
		c.Publish.Twitter.ProcessingPollSeconds = defaultTwitterPollSeconds
	}
	if c.Publish.Twitter.ProcessingMaxWaitSeconds <= 0 {
		c.Publish.Twitter.ProcessingMaxWaitSeconds = defaultTwitterMaxWait
	}

	c.Ads.BaseURL = trimBase(c.Ads.BaseURL, defaultAdsBaseURL)
	c.Ads.ReportType = strings.TrimSpace(c.Ads.ReportType)
	if c.Ads.ReportType == "" {
		c.Ads.ReportType = defaultAdsReportType
	}
	if c.Ads.DaysBack <= 0 {
		c.Ads.DaysBack = defaultAdsDaysBack
	}
	if c.Ads.PollIntervalSeconds <= 0 {
		c.Ads.PollIntervalSeconds = defaultAdsPollSeconds
	}
	if c.Ads.MaxWaitSeconds <= 0 {
		c.Ads.MaxWaitSeconds = defaultAdsMaxWaitSeconds
	}
}

func (c *Config) normalizeRun() {
	if c.Run.ProductsPerRun <= 0 {
		c.Run.ProductsPerRun = defaultProductsPerRun
	}
	if c.Run.DelaySeconds < 0 {
		c.Run.DelaySeconds = defaultDelaySeconds
	}
}

func (c *Config) normalizeSchedule() {
	c.Schedule.Type = strings.ToLower(strings.TrimSpace(c.Schedule.Type))
	if c.Schedule.Type == "" {
		c.Schedule.Type = defaultScheduleType
	}
	c.Schedule.Time = strings.TrimSpace(c.Schedule.Time)
	if c.Schedule.Time == "" {
		c.Schedule.Time = defaultScheduleTime
	}
	if c.Schedule.IntervalHours <= 0 {
		c.Schedule.IntervalHours = defaultScheduleIntervalHours
	}
	times := c.Schedule.Times[:0]
	for _, value := range c.Schedule.Times {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			times = append(times, trimmed)
		}
	}
	c.Schedule.Times = times
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
