// Package types defines the service metadata contract shared between
// providers and the surfaces that mount them.
package types

// Category represents service categories
type Category string

const (
	CategorySystem     Category = "system"
	CategoryShell      Category = "shell"
	CategoryFilesystem Category = "filesystem"
)

// Service represents a service definition
type Service struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Category     Category `json:"category"`
	Capabilities []string `json:"capabilities"`
	Tools        []Tool   `json:"tools"`
}

// Tool represents a service tool
type Tool struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
	Returns     string      `json:"returns"`
}

// Parameter represents a tool parameter
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Context provides execution context for services
type Context struct {
	SessionID  *string `json:"session_id,omitempty"`
	WorkingDir *string `json:"working_dir,omitempty"`
	UserID     *string `json:"user_id,omitempty"`
}

// Result represents a service execution result
type Result struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *string                `json:"error,omitempty"`
}
