package paths

type Paths interface {
	CreateConfigPathFor(ConfigPath) (string, error)
	CreateConfigDirFor(ConfigPath) (string, error)
	CreateDataPathFor(DataPath) (string, error)
	CreateDataDirFor(DataPath) (string, error)
	CreateStatePathFor(StatePath) (string, error)
	CreateStateDirFor(StatePath) (string, error)
	ConfigPathFor(ConfigPath) string
	DataPathFor(DataPath) string
	StatePathFor(StatePath) string
}

// New returns the Paths implementation matching the given home: rooted under
// customHome when one is given, under the standard platform directories
// otherwise.
func New(customHome string) Paths {
	if customHome != "" {
		return &CustomPaths{CustomHome: customHome}
	}
	return &DefaultPaths{}
}
