package ports

type ExportItem struct {
	Key         string
	Context     string
	SourceText  string
	Translation string
	Status      string
	MetadataRaw string
}

// ExportMeta carries file-level settings. Separator only applies to
// delimited formats.
type ExportMeta struct {
	Locale      string
	SourceLang  string
	MetadataRaw string
	Separator   rune
}

type Exporter interface {
	Format() string
	Extension() string
	Export(meta ExportMeta, items []ExportItem) ([]byte, error)
}
