package models

// ServiceSpec describes one backing service: the message broker or the
// metastore.
type ServiceSpec struct {
	Name     string `yaml:"name"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`

	// VirtualHost applies to the broker only.
	VirtualHost string `yaml:"virtual_host,omitempty"`

	Image string `yaml:"image"`
	Tag   string `yaml:"tag"`

	// Home is the broker's data directory inside its container.
	Home string `yaml:"home,omitempty"`

	// Data is the metastore's data directory inside its container.
	Data string `yaml:"data,omitempty"`

	// UIPort publishes the broker management UI when non-zero.
	UIPort int `yaml:"ui_port,omitempty"`

	Env map[string]string `yaml:"env"`
}

// ImageRef is the image reference for this service, with the tag applied
// when one is configured.
func (s ServiceSpec) ImageRef() string {
	if s.Tag == "" {
		return s.Image
	}
	return s.Image + ":" + s.Tag
}
