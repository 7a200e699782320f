package config

import (
	"errors"
	"flag"
	"net"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr        string
	DBUrl       string
	TokenSecret string
	TokenTTL    time.Duration
	UploadDir   string
	MaxUpload   int64
	Seed        bool
	Debug       bool
}

// ParseFlags loads .env (if present) and parses the process arguments.
// Environment variables provide defaults, flags override them.
func ParseFlags() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}
	return Parse(os.Args[1:])
}

func Parse(args []string) (cfg Config, err error) {
	fs := flag.NewFlagSet("recruit", flag.ContinueOnError)

	var host string
	fs.StringVar(&host, "host", envString("RECRUIT_HOST", "0.0.0.0"), "listen host name")
	var port uint
	fs.UintVar(&port, "port", envUint("RECRUIT_PORT", 8080), "listen port number")
	fs.StringVar(&cfg.DBUrl, "db-url", envString("RECRUIT_DB_URL", "recruit.sqlite"), "path to SQLite3 DB file")
	fs.StringVar(&cfg.TokenSecret, "token-secret", envString("RECRUIT_TOKEN_SECRET", ""), "secret key for token encryption and decryption")
	var ttl uint
	fs.UintVar(&ttl, "token-ttl", envUint("RECRUIT_TOKEN_TTL", 7200), "token TTL in seconds")
	fs.StringVar(&cfg.UploadDir, "upload-dir", envString("RECRUIT_UPLOAD_DIR", "uploads"), "directory for files attached to applications")
	var maxUpload uint
	fs.UintVar(&maxUpload, "max-upload-mb", envUint("RECRUIT_MAX_UPLOAD_MB", 16), "maximum request size for uploads, in MiB")
	fs.BoolVar(&cfg.Seed, "seed", envBool("RECRUIT_SEED", false), "insert demo data into an empty database")
	fs.BoolVar(&cfg.Debug, "debug", envBool("RECRUIT_DEBUG", false), "log at DEBUG level")

	if err = fs.Parse(args); err != nil {
		return
	}

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.TokenTTL = time.Duration(ttl) * time.Second
	cfg.MaxUpload = int64(maxUpload) << 20

	if cfg.TokenSecret == "" {
		err = errors.New("missing parameter -token-secret")
	}

	return
}

var reAnyHost = regexp.MustCompile(`^0\.0\.0\.0`)

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = reAnyHost.ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}

func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func envUint(key string, def uint) uint {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 0)
	if err != nil {
		return def
	}
	return uint(n)
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
