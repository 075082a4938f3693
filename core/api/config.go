package api

// Config holds configuration for the remote grocery API.
type Config struct {
	// Endpoint is the URL of the REST service.
	Endpoint string `mapstructure:"endpoint" default:"http://www.techfortesco.com/groceryapi_b1/RESTService.aspx"`
	// DeveloperKey identifies the developer account.
	DeveloperKey string `mapstructure:"developer_key" default:""`
	// ApplicationKey identifies the application.
	ApplicationKey string `mapstructure:"application_key" default:""`
	// TimeoutSeconds bounds each HTTP request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// UserAgent is sent with every request.
	UserAgent string `mapstructure:"user_agent" default:"grocer/0.1"`
}
