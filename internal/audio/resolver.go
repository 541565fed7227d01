// Package audio maps reference display keys to recitation audio stored in a
// blob container addressed by a SAS URL.
package audio

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultMapping lists the recordings shipped with the first classes.
var defaultMapping = map[string]string{
	"Vach.Sā.1":      "Class 1/V_SA_1.m4a",
	"Swā.Vāto: 1/19": "Class 1/SV_1.19.m4a",
	"Swā.Vāto: 1/26": "Class 1/SV_1.26.m4a",
	"Swā.Vāto: 6/77": "Class 1/SV_6.77.m4a",
	"Swā.Vāto: 1/14": "Class 2/SV_1.14.m4a",
	"Swā.Vāto: 2/19": "Class 2/SV_2.19.m4a",
	"Swā.Vāto: 4/99": "Class 2/SV_4.99.m4a",
	"Vach.Ga.Pr.21":  "Class 2/V_GP_21.m4a",
	"Vach.Ga.An.30":  "Class 2/V_GA_30.m4a",
}

// DefaultMapping returns a copy of the built-in key to blob path mapping.
func DefaultMapping() map[string]string {
	m := make(map[string]string, len(defaultMapping))
	for k, v := range defaultMapping {
		m[k] = v
	}
	return m
}

// mappingFile is the YAML layout of an override file.
type mappingFile struct {
	Audio map[string]string `yaml:"audio"`
}

// LoadMapping reads a YAML mapping file and merges it over the defaults.
func LoadMapping(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio mapping: %w", err)
	}

	var mf mappingFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("failed to parse audio mapping: %w", err)
	}

	m := DefaultMapping()
	for k, v := range mf.Audio {
		if v == "" {
			delete(m, k)
			continue
		}
		m[k] = v
	}
	return m, nil
}

// Resolver builds signed URLs for mapped keys.
type Resolver struct {
	baseURL string
	sas     string
	mapping map[string]string
}

// NewResolver splits containerURL into its base and SAS query. A resolver
// with an empty or unusable container URL resolves nothing.
func NewResolver(containerURL string, mapping map[string]string) *Resolver {
	if mapping == nil {
		mapping = DefaultMapping()
	}
	r := &Resolver{mapping: mapping}

	u, err := url.Parse(strings.TrimSpace(containerURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return r
	}
	r.baseURL = u.Scheme + "://" + u.Host + strings.TrimRight(u.EscapedPath(), "/")
	r.sas = u.RawQuery
	return r
}

// Enabled reports whether the resolver has a usable container.
func (r *Resolver) Enabled() bool {
	return r != nil && r.baseURL != ""
}

// URL returns the playable URL for key.
func (r *Resolver) URL(key string) (string, bool) {
	if !r.Enabled() {
		return "", false
	}
	blob, ok := r.mapping[key]
	if !ok {
		return "", false
	}

	segments := strings.Split(strings.TrimLeft(blob, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}

	u := r.baseURL + "/" + strings.Join(segments, "/")
	if r.sas != "" {
		u += "?" + r.sas
	}
	return u, true
}
