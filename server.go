package certichain

// ServerConf configures the http server
type ServerConf struct {
	IPListen          string   `yaml:"ip_listen"`
	Port              int      `yaml:"port"`
	TLS               tlsConf  `yaml:"tls"`
	TrustedProxies    []string `yaml:"trusted_proxies"`
	ForwardedIPHeader string   `yaml:"forwarded_ip_header"`
	// AllowOrigins is passed to the cors middleware
	AllowOrigins string `yaml:"allow_origins"`
	// BodyLimit is the maximum request body size in bytes
	BodyLimit int `yaml:"body_limit"`
}

type tlsConf struct {
	Enabled      bool   `yaml:"enabled"`
	RedirectHTTP bool   `yaml:"redirect_http"`
	Cert         string `yaml:"cert"`
	Key          string `yaml:"key"`
}

// DefaultServerConf is the ServerConf used when nothing is configured
var DefaultServerConf = ServerConf{
	Port:         3000,
	AllowOrigins: "*",
	BodyLimit:    16 * 1024 * 1024,
}
