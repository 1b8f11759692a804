package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mind-engage/qbank-loader/internal/bank"
	"github.com/mind-engage/qbank-loader/internal/db"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	DBDriver    string `yaml:"db_driver"`
	DBDSN       string `yaml:"db_dsn"` // when set, the discrete DB_* parts are ignored
	DBHost      string `yaml:"db_host"`
	DBPort      int    `yaml:"db_port"`
	DBUser      string `yaml:"db_user"`
	DBPassword  string `yaml:"db_password"`
	DBName      string `yaml:"db_name"`
	DBCharset   string `yaml:"db_charset"`
	DBBootstrap bool   `yaml:"db_bootstrap"`

	WrittenBankPath   string `yaml:"written_bank_path"`
	RoadRulesBankPath string `yaml:"road_rules_bank_path"`

	// TypeIDs maps question_type names (单选, 多选, 判断) to type_id.
	TypeIDs map[string]int `yaml:"type_ids"`

	SampleSize       int    `yaml:"sample_size"`
	AllowEmptyAnswer bool   `yaml:"allow_empty_answer"`
	ExportDir        string `yaml:"export_dir"` // optional JSON snapshots of parsed banks
}

func Defaults() Config {
	return Config{
		DBDriver:          "mysql",
		DBHost:            "127.0.0.1",
		DBPort:            3306,
		DBUser:            "root",
		DBName:            "driving_exam_system",
		DBCharset:         "utf8mb4",
		WrittenBankPath:   "./data/C1C2科目一题库.docx",
		RoadRulesBankPath: "./data/C1C2科目四题库.docx",
		TypeIDs:           map[string]int{"单选": 1, "多选": 2, "判断": 3},
		SampleSize:        3,
	}
}

// FromEnv returns the defaults overridden by environment variables.
func FromEnv() Config {
	cfg := Defaults()
	applyEnv(&cfg)
	return cfg
}

// Resolve loads QBANK_CONFIG when it is set, otherwise FromEnv, and
// validates the result.
func Resolve() (Config, error) {
	if path := os.Getenv("QBANK_CONFIG"); path != "" {
		return Load(path)
	}
	cfg := FromEnv()
	return cfg, cfg.Validate()
}

func applyEnv(c *Config) {
	c.DBDriver = envOr("DB_DRIVER", c.DBDriver)
	c.DBDSN = envOr("DB_DSN", c.DBDSN)
	c.DBHost = envOr("DB_HOST", c.DBHost)
	c.DBPort = envInt("DB_PORT", c.DBPort)
	c.DBUser = envOr("DB_USER", c.DBUser)
	c.DBPassword = envOr("DB_PASSWORD", c.DBPassword)
	c.DBName = envOr("DB_NAME", c.DBName)
	c.DBCharset = envOr("DB_CHARSET", c.DBCharset)
	c.DBBootstrap = envBool("DB_BOOTSTRAP", c.DBBootstrap)
	c.WrittenBankPath = envOr("WRITTEN_BANK_PATH", c.WrittenBankPath)
	c.RoadRulesBankPath = envOr("ROAD_RULES_BANK_PATH", c.RoadRulesBankPath)
	if v := os.Getenv("TYPE_IDS"); v != "" {
		c.TypeIDs = parseTypeIDs(csvOr("TYPE_IDS", v))
	}
	c.SampleSize = envInt("SAMPLE_SIZE", c.SampleSize)
	c.AllowEmptyAnswer = envBool("ALLOW_EMPTY_ANSWER", c.AllowEmptyAnswer)
	c.ExportDir = envOr("EXPORT_DIR", c.ExportDir)
}

// Validate reports every problem at once, wrapped in ErrInvalid.
func (c Config) Validate() error {
	var errs []error
	if _, err := db.ParseDriver(c.DBDriver); err != nil {
		errs = append(errs, err)
	}
	if c.DBDSN == "" && c.DBName == "" {
		errs = append(errs, errors.New("db_name or db_dsn is required"))
	}
	if c.WrittenBankPath == "" {
		errs = append(errs, errors.New("written_bank_path is required"))
	}
	if c.RoadRulesBankPath == "" {
		errs = append(errs, errors.New("road_rules_bank_path is required"))
	}
	if c.SampleSize < 0 {
		errs = append(errs, fmt.Errorf("sample_size must be >= 0, got %d", c.SampleSize))
	}
	seen := map[int]string{}
	for _, k := range bank.Kinds {
		id, ok := c.TypeIDs[string(k)]
		if !ok {
			errs = append(errs, fmt.Errorf("type_ids: missing %s", k))
			continue
		}
		if id <= 0 {
			errs = append(errs, fmt.Errorf("type_ids: %s must be positive, got %d", k, id))
		}
		if other, dup := seen[id]; dup {
			errs = append(errs, fmt.Errorf("type_ids: %s and %s share id %d", other, k, id))
		}
		seen[id] = string(k)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// Driver returns the parsed DB driver. Call Validate first.
func (c Config) Driver() db.Driver {
	d, _ := db.ParseDriver(c.DBDriver)
	return d
}

// DSN returns DBDSN, or builds one from the discrete DB settings.
func (c Config) DSN() (string, error) {
	if c.DBDSN != "" {
		return c.DBDSN, nil
	}
	return db.BuildDSN(c.Driver(), db.Params{
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		Name:     c.DBName,
		Charset:  c.DBCharset,
	})
}

// Types converts TypeIDs to the kind map the assembler uses.
func (c Config) Types() bank.TypeMap {
	m := bank.TypeMap{}
	for _, k := range bank.Kinds {
		if id, ok := c.TypeIDs[string(k)]; ok {
			m[k] = bank.TypeID(id)
		}
	}
	return m
}

// TypeRows lists the type map as question_type seed rows in id order.
func (c Config) TypeRows() []db.TypeRow {
	rows := make([]db.TypeRow, 0, len(bank.Kinds))
	for _, k := range bank.Kinds {
		if id, ok := c.TypeIDs[string(k)]; ok {
			rows = append(rows, db.TypeRow{ID: id, Name: string(k)})
		}
	}
	return rows
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(k)))
	if err != nil {
		return def
	}
	return v
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// parseTypeIDs reads "单选=1" pairs; malformed pairs are skipped and caught
// by Validate as missing kinds.
func parseTypeIDs(pairs []string) map[string]int {
	out := map[string]int{}
	for _, p := range pairs {
		name, id, ok := strings.Cut(p, "=")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(id))
		if err != nil {
			continue
		}
		out[strings.TrimSpace(name)] = n
	}
	return out
}
