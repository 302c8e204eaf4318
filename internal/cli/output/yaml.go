package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/yndnr/redmod-go/pkg/resp"
)

// YAMLFormatter formats data as YAML.
type YAMLFormatter struct{}

// Format formats the reply as a YAML document.
func (f *YAMLFormatter) Format(w io.Writer, v resp.Value) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(Data(v)); err != nil {
		return err
	}
	return encoder.Close()
}
