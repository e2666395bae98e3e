package reportportal

// Status is the final status of a launch or item
type Status string

const (
	StatusPassed      Status = "PASSED"
	StatusFailed      Status = "FAILED"
	StatusStopped     Status = "STOPPED"
	StatusSkipped     Status = "SKIPPED"
	StatusInterrupted Status = "INTERRUPTED"
	StatusCancelled   Status = "CANCELLED"
)

// ItemType is the kind of a test item
type ItemType string

const (
	ItemSuite    ItemType = "SUITE"
	ItemStory    ItemType = "STORY"
	ItemTest     ItemType = "TEST"
	ItemScenario ItemType = "SCENARIO"
	ItemStep     ItemType = "STEP"
)

// LogLevel is the level of a log entry
type LogLevel string

const (
	LogTrace LogLevel = "TRACE"
	LogDebug LogLevel = "DEBUG"
	LogInfo  LogLevel = "INFO"
	LogWarn  LogLevel = "WARN"
	LogError LogLevel = "ERROR"
	LogFatal LogLevel = "FATAL"
)

// LaunchMode is the visibility mode of a launch
type LaunchMode string

const (
	ModeDefault LaunchMode = "DEFAULT"
	ModeDebug   LaunchMode = "DEBUG"
)

type startLaunchRequest struct {
	Description string     `json:"description"`
	Mode        LaunchMode `json:"mode"`
	Name        string     `json:"name"`
	StartTime   string     `json:"start_time"`
	Tags        []string   `json:"tags"`
}

type finishLaunchRequest struct {
	EndTime string `json:"end_time"`
	Status  Status `json:"status"`
}

type startItemRequest struct {
	Description string   `json:"description"`
	LaunchID    string   `json:"launch_id"`
	Name        string   `json:"name"`
	StartTime   string   `json:"start_time"`
	Tags        []string `json:"tags"`
	Type        ItemType `json:"type"`
}

type finishItemRequest struct {
	Description string `json:"description"`
	EndTime     string `json:"end_time"`
	Status      Status `json:"status"`
}

type logRequest struct {
	ItemID  string   `json:"item_id"`
	Message string   `json:"message"`
	Time    string   `json:"time"`
	Level   LogLevel `json:"level"`
}

type logFile struct {
	Name string `json:"name"`
}

type pictureLogRequest struct {
	File logFile `json:"file"`
	logRequest
}
