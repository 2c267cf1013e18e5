package dataset

import (
	"log/slog"
	"path/filepath"

	"github.com/hazyhaar/annomi/pkg/split"
	"github.com/hazyhaar/annomi/pkg/subst"
	"github.com/hazyhaar/annomi/pkg/tabular"
	"github.com/hazyhaar/annomi/pkg/textnorm"
	"github.com/hazyhaar/annomi/pkg/topic"
)

// Default column names and file locations.
const (
	DefaultTopicField    = "topic"
	DefaultTextField     = "utterance_text"
	DefaultOldTopicField = topic.DefaultOldColumn
	DefaultNewTopicField = topic.DefaultNewColumn
)

var (
	DefaultDatasetPath  = filepath.Join("data", "dataset.csv")
	DefaultTopicMapPath = filepath.Join("data", "new_topics_distribution.csv")
	// DefaultTargets are the label columns split when none are requested.
	DefaultTargets = []string{"client_talk_type", "main_therapist_behaviour"}
)

// Option configures a Dataset.
type Option func(*config)

type config struct {
	topicField    string
	topicSep      string
	oldTopicField string
	newTopicField string
	textField     string
	topicMapPath  string
	format        tabular.Format
	topicTable    *topic.Table
	substitutions *subst.Map
	fold          textnorm.Folder
	logger        *slog.Logger
}

func defaultConfig() config {
	return config{
		topicField:    DefaultTopicField,
		topicSep:      split.DefaultSeparator,
		oldTopicField: DefaultOldTopicField,
		newTopicField: DefaultNewTopicField,
		textField:     DefaultTextField,
		topicMapPath:  DefaultTopicMapPath,
		fold:          textnorm.Lower,
		logger:        slog.Default(),
	}
}

// WithTopicField sets the topic column (default "topic").
func WithTopicField(name string) Option {
	return func(c *config) {
		if name != "" {
			c.topicField = name
		}
	}
}

// WithTopicSeparator sets the composite topic separator (default "|").
func WithTopicSeparator(sep string) Option {
	return func(c *config) {
		if sep != "" {
			c.topicSep = sep
		}
	}
}

// WithTopicColumns sets the old/new column names of the topic mapping file.
func WithTopicColumns(oldField, newField string) Option {
	return func(c *config) {
		if oldField != "" {
			c.oldTopicField = oldField
		}
		if newField != "" {
			c.newTopicField = newField
		}
	}
}

// WithTextField sets the utterance text column (default "utterance_text").
func WithTextField(name string) Option {
	return func(c *config) {
		if name != "" {
			c.textField = name
		}
	}
}

// WithTopicMapPath sets the topic mapping file read on first remap.
func WithTopicMapPath(path string) Option {
	return func(c *config) {
		if path != "" {
			c.topicMapPath = path
		}
	}
}

// WithFormat sets the CSV layout used for the dataset and the topic mapping file.
func WithFormat(f tabular.Format) Option {
	return func(c *config) {
		c.format = f
	}
}

// WithTopicTable supplies the topic mapping table instead of loading it.
func WithTopicTable(t *topic.Table) Option {
	return func(c *config) {
		c.topicTable = t
	}
}

// WithSubstitutions sets the map used by ReplaceAbbreviations. Without it the
// process-wide default from subst.Default is used.
func WithSubstitutions(m subst.Map) Option {
	return func(c *config) {
		c.substitutions = &m
	}
}

// WithFold sets the case folder used by Lowercase (default textnorm.Lower).
func WithFold(f textnorm.Folder) Option {
	return func(c *config) {
		if f != nil {
			c.fold = f
		}
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
