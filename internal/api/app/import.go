package app

import (
	"context"

	csvparser "github.com/david-geiger/knowthelist/internal/adapters/parser/csv"
	"github.com/david-geiger/knowthelist/internal/adapters/parser/qtts"
	parreg "github.com/david-geiger/knowthelist/internal/adapters/parser/registry"
	"github.com/david-geiger/knowthelist/internal/usecase/importer"
)

type ImportAPI struct {
	svc *importer.Service
}

func NewImportAPI(svc *importer.Service) *ImportAPI { return &ImportAPI{svc: svc} }

type ImportRequest struct {
	ProjectID int64  `json:"project_id"`
	Filename  string `json:"filename"`
	Format    string `json:"format"`
	Locale    string `json:"locale"`
	Content   []byte `json:"content"`
}

type ImportResponse struct {
	FileID       int64  `json:"file_id"`
	Locale       string `json:"locale"`
	Units        int    `json:"units"`
	Translations int    `json:"translations"`
}

func (a *ImportAPI) Import(ctx context.Context, req ImportRequest) (ImportResponse, error) {
	res, err := a.svc.Import(ctx, importer.ImportArgs{ProjectID: req.ProjectID, Filename: req.Filename, Format: req.Format, Locale: req.Locale, Content: req.Content})
	if err != nil {
		return ImportResponse{}, err
	}
	return ImportResponse{FileID: res.FileID, Locale: res.Locale, Units: res.Units, Translations: res.Translations}, nil
}

// NewDefaultParserRegistry registers every parser the workbench ships.
func NewDefaultParserRegistry() *parreg.Registry {
	reg := parreg.New()
	reg.Register(qtts.New())
	reg.Register(csvparser.New())
	return reg
}
