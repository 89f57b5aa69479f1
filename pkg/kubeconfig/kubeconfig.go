/*
Copyright 2025 The clientkit Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package kubeconfig loads client configuration files and resolves them
// into transport configuration. Files listed first take precedence, the
// conventional merge order for the KUBECONFIG search path.
package kubeconfig

import (
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"

	"github.com/kubeworks/clientkit/pkg/transport"
)

// RecommendedEnvVar names the environment variable holding the search
// path of configuration files.
const RecommendedEnvVar = "KUBECONFIG"

const (
	errNoFiles      = "no configuration files found"
	errReadFile     = "cannot read configuration file"
	errParseFile    = "cannot parse configuration file"
	errMergeConfig  = "cannot merge configuration"
	errNoContext    = "no such context"
	errNoCluster    = "context references unknown cluster"
	errNoUser       = "context references unknown user"
	errReadCAFile   = "cannot read certificate authority file"
	errReadCertFile = "cannot read client certificate file"
	errReadKeyFile  = "cannot read client key file"
	errReadToken    = "cannot read token file"
)

// Config is the on-disk client configuration format.
type Config struct {
	APIVersion     string         `json:"apiVersion,omitempty"`
	Kind           string         `json:"kind,omitempty"`
	CurrentContext string         `json:"current-context,omitempty"`
	Clusters       []NamedCluster `json:"clusters,omitempty"`
	Contexts       []NamedContext `json:"contexts,omitempty"`
	Users          []NamedUser    `json:"users,omitempty"`
}

// NamedCluster associates a name with cluster connection details.
type NamedCluster struct {
	Name    string  `json:"name"`
	Cluster Cluster `json:"cluster"`
}

// Cluster holds how to reach one API server.
type Cluster struct {
	Server                   string `json:"server"`
	InsecureSkipTLSVerify    bool   `json:"insecure-skip-tls-verify,omitempty"`
	CertificateAuthority     string `json:"certificate-authority,omitempty"`
	CertificateAuthorityData []byte `json:"certificate-authority-data,omitempty"`
	TLSServerName            string `json:"tls-server-name,omitempty"`
}

// NamedContext associates a name with a context.
type NamedContext struct {
	Name    string  `json:"name"`
	Context Context `json:"context"`
}

// Context pairs a cluster with the user to reach it as, plus a default
// namespace.
type Context struct {
	Cluster   string `json:"cluster"`
	User      string `json:"user"`
	Namespace string `json:"namespace,omitempty"`
}

// NamedUser associates a name with credentials.
type NamedUser struct {
	Name string `json:"name"`
	User User   `json:"user"`
}

// User holds credentials for one identity.
type User struct {
	ClientCertificate     string `json:"client-certificate,omitempty"`
	ClientCertificateData []byte `json:"client-certificate-data,omitempty"`
	ClientKey             string `json:"client-key,omitempty"`
	ClientKeyData         []byte `json:"client-key-data,omitempty"`
	Token                 string `json:"token,omitempty"`
	TokenFile             string `json:"tokenFile,omitempty"`
}

// DefaultPath returns the configuration search path: the files named by
// KUBECONFIG, or the conventional location under the home directory.
func DefaultPath() []string {
	if env := os.Getenv(RecommendedEnvVar); env != "" {
		var out []string
		for _, p := range filepath.SplitList(env) {
			if p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(home, ".kube", "config")}
}

// Load reads and merges the supplied configuration files. Earlier files
// win conflicts; entries unique to later files are appended. Files that
// do not exist are skipped.
func Load(fs afero.Fs, paths ...string) (*Config, error) {
	merged := &Config{}
	found := false
	for _, path := range paths {
		ok, err := afero.Exists(fs, path)
		if err != nil || !ok {
			continue
		}
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return nil, errors.Wrapf(err, "%s %s", errReadFile, path)
		}
		var cfg Config
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrapf(err, "%s %s", errParseFile, path)
		}
		if err := merge(merged, &cfg); err != nil {
			return nil, errors.Wrap(err, errMergeConfig)
		}
		found = true
	}
	if !found {
		return nil, errors.New(errNoFiles)
	}
	return merged, nil
}

// merge folds src into dst. Named entries are appended when dst has no
// entry of that name; scalar fields keep dst's value when set.
func merge(dst, src *Config) error {
	for _, c := range src.Clusters {
		if !hasName(dst.Clusters, c.Name, func(n NamedCluster) string { return n.Name }) {
			dst.Clusters = append(dst.Clusters, c)
		}
	}
	for _, c := range src.Contexts {
		if !hasName(dst.Contexts, c.Name, func(n NamedContext) string { return n.Name }) {
			dst.Contexts = append(dst.Contexts, c)
		}
	}
	for _, u := range src.Users {
		if !hasName(dst.Users, u.Name, func(n NamedUser) string { return n.Name }) {
			dst.Users = append(dst.Users, u)
		}
	}
	return mergo.Merge(dst, *src)
}

func hasName[T any](entries []T, name string, nameOf func(T) string) bool {
	for _, e := range entries {
		if nameOf(e) == name {
			return true
		}
	}
	return false
}

// Context resolves a context by name; the empty name means the file's
// current context.
func (c *Config) Context(name string) (*Context, error) {
	if name == "" {
		name = c.CurrentContext
	}
	for _, nc := range c.Contexts {
		if nc.Name == name {
			ctx := nc.Context
			return &ctx, nil
		}
	}
	return nil, errors.Errorf("%s %q", errNoContext, name)
}

// Namespace returns the default namespace of the named context, falling
// back to "default".
func (c *Config) Namespace(contextName string) string {
	ctx, err := c.Context(contextName)
	if err != nil || ctx.Namespace == "" {
		return "default"
	}
	return ctx.Namespace
}

// RESTConfig resolves a context into transport configuration, reading
// any referenced certificate, key and token files through fs.
func (c *Config) RESTConfig(fs afero.Fs, contextName string) (*transport.Config, error) {
	ctx, err := c.Context(contextName)
	if err != nil {
		return nil, err
	}

	var cluster *Cluster
	for _, nc := range c.Clusters {
		if nc.Name == ctx.Cluster {
			cl := nc.Cluster
			cluster = &cl
			break
		}
	}
	if cluster == nil {
		return nil, errors.Errorf("%s %q", errNoCluster, ctx.Cluster)
	}

	var user *User
	for _, nu := range c.Users {
		if nu.Name == ctx.User {
			u := nu.User
			user = &u
			break
		}
	}
	if user == nil {
		return nil, errors.Errorf("%s %q", errNoUser, ctx.User)
	}

	cfg := &transport.Config{
		Host: cluster.Server,
		TLS: transport.TLSConfig{
			Insecure:   cluster.InsecureSkipTLSVerify,
			CAData:     cluster.CertificateAuthorityData,
			CertData:   user.ClientCertificateData,
			KeyData:    user.ClientKeyData,
			ServerName: cluster.TLSServerName,
		},
		BearerToken: user.Token,
	}

	if len(cfg.TLS.CAData) == 0 && cluster.CertificateAuthority != "" {
		data, err := afero.ReadFile(fs, cluster.CertificateAuthority)
		if err != nil {
			return nil, errors.Wrap(err, errReadCAFile)
		}
		cfg.TLS.CAData = data
	}
	if len(cfg.TLS.CertData) == 0 && user.ClientCertificate != "" {
		data, err := afero.ReadFile(fs, user.ClientCertificate)
		if err != nil {
			return nil, errors.Wrap(err, errReadCertFile)
		}
		cfg.TLS.CertData = data
	}
	if len(cfg.TLS.KeyData) == 0 && user.ClientKey != "" {
		data, err := afero.ReadFile(fs, user.ClientKey)
		if err != nil {
			return nil, errors.Wrap(err, errReadKeyFile)
		}
		cfg.TLS.KeyData = data
	}
	if cfg.BearerToken == "" && user.TokenFile != "" {
		data, err := afero.ReadFile(fs, user.TokenFile)
		if err != nil {
			return nil, errors.Wrap(err, errReadToken)
		}
		cfg.BearerToken = strings.TrimSpace(string(data))
	}
	return cfg, nil
}
