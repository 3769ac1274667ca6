// Package config holds the deployment spec for a webfleet stack.
//
// Values resolve in precedence order: spec file, WEBFLEET_* environment
// variables, fixed defaults. The spec is intentionally a plain record per
// resource concern rather than a type hierarchy.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

type Spec struct {
	Region  string `yaml:"region"`
	VpcCidr string `yaml:"vpc_cidr"`
	AzCount int    `yaml:"az_count"`

	InstanceType string `yaml:"instance_type"`

	BucketName   string `yaml:"bucket_name"`
	BucketPublic bool   `yaml:"bucket_public"`

	DbName          string `yaml:"db_name"`
	DbUsername      string `yaml:"db_username"`
	DbPassword      string `yaml:"db_password"`
	DbInstanceClass string `yaml:"db_instance_class"`

	MinSize         int `yaml:"min_size"`
	MaxSize         int `yaml:"max_size"`
	DesiredCapacity int `yaml:"desired_capacity"`
}

func Default() Spec {
	return Spec{
		Region:          "us-east-1",
		VpcCidr:         "10.0.0.0/16",
		AzCount:         3,
		InstanceType:    "t3.micro",
		BucketPublic:    false,
		DbName:          "webapp",
		DbUsername:      "dbadmin",
		DbPassword:      "changeme1234",
		DbInstanceClass: "db.t3.micro",
		MinSize:         1,
		MaxSize:         3,
		DesiredCapacity: 2,
	}
}

// Load resolves the effective spec. path may be empty, in which case only
// environment variables and defaults apply. Capacity bounds are passed
// through as supplied; there is no clamping or cross-field validation.
func Load(fs afero.Fs, path string, env func(string) (string, bool)) (Spec, error) {
	spec := Default()

	if path != "" {
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return Spec{}, fmt.Errorf("failed to read spec file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &spec); err != nil {
			return Spec{}, fmt.Errorf("failed to parse spec file %s: %w", path, err)
		}
	}

	if err := spec.applyEnv(env); err != nil {
		return Spec{}, err
	}

	if spec.BucketName == "" {
		// bucket names are globally unique, so the fallback gets a random suffix
		spec.BucketName = "webfleet-site-" + strings.Split(uuid.NewString(), "-")[0]
	}
	return spec, nil
}

func (s *Spec) applyEnv(env func(string) (string, bool)) error {
	strs := map[string]*string{
		"WEBFLEET_REGION":            &s.Region,
		"WEBFLEET_VPC_CIDR":          &s.VpcCidr,
		"WEBFLEET_INSTANCE_TYPE":     &s.InstanceType,
		"WEBFLEET_BUCKET_NAME":       &s.BucketName,
		"WEBFLEET_DB_NAME":           &s.DbName,
		"WEBFLEET_DB_USERNAME":       &s.DbUsername,
		"WEBFLEET_DB_PASSWORD":       &s.DbPassword,
		"WEBFLEET_DB_INSTANCE_CLASS": &s.DbInstanceClass,
	}
	for key, dst := range strs {
		if v, ok := env(key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"WEBFLEET_AZ_COUNT":         &s.AzCount,
		"WEBFLEET_MIN_SIZE":         &s.MinSize,
		"WEBFLEET_MAX_SIZE":         &s.MaxSize,
		"WEBFLEET_DESIRED_CAPACITY": &s.DesiredCapacity,
	}
	for key, dst := range ints {
		if v, ok := env(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", key, err)
			}
			*dst = n
		}
	}

	if v, ok := env("WEBFLEET_BUCKET_PUBLIC"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid value for WEBFLEET_BUCKET_PUBLIC: %w", err)
		}
		s.BucketPublic = b
	}
	return nil
}

// StackValues splits the spec into plain and secret Pulumi stack config
// values, keyed by webfleet:<name>.
func (s Spec) StackValues() (plain map[string]string, secret map[string]string) {
	plain = map[string]string{
		"webfleet:vpc_cidr":          s.VpcCidr,
		"webfleet:az_count":          strconv.Itoa(s.AzCount),
		"webfleet:instance_type":     s.InstanceType,
		"webfleet:bucket_name":       s.BucketName,
		"webfleet:bucket_public":     strconv.FormatBool(s.BucketPublic),
		"webfleet:db_name":           s.DbName,
		"webfleet:db_instance_class": s.DbInstanceClass,
		"webfleet:min_size":          strconv.Itoa(s.MinSize),
		"webfleet:max_size":          strconv.Itoa(s.MaxSize),
		"webfleet:desired_capacity":  strconv.Itoa(s.DesiredCapacity),
	}
	secret = map[string]string{
		"webfleet:db_username": s.DbUsername,
		"webfleet:db_password": s.DbPassword,
	}
	return plain, secret
}
