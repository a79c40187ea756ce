package app

import (
	"context"

	csvexp "github.com/david-geiger/knowthelist/internal/adapters/exporter/csv"
	"github.com/david-geiger/knowthelist/internal/adapters/exporter/lookupjson"
	"github.com/david-geiger/knowthelist/internal/adapters/exporter/qtts"
	exreg "github.com/david-geiger/knowthelist/internal/adapters/exporter/registry"
	"github.com/david-geiger/knowthelist/internal/usecase/exporter"
)

type ExportAPI struct{ svc *exporter.Service }

func NewExportAPI(s *exporter.Service) *ExportAPI { return &ExportAPI{svc: s} }

type ExportFileRequest struct {
	FileID         int64  `json:"file_id"`
	Locale         string `json:"locale"`
	OverrideFormat string `json:"override_format"`
	Fallback       bool   `json:"fallback"`
	Separator      string `json:"separator"`
}

type ExportFileResponse struct {
	Filename string `json:"filename"`
	Content  []byte `json:"content"`
}

func (a *ExportAPI) ExportFile(ctx context.Context, req ExportFileRequest) (ExportFileResponse, error) {
	var sep rune
	if req.Separator != "" {
		sep = []rune(req.Separator)[0]
	}
	res, err := a.svc.ExportFile(ctx, exporter.ExportArgs{FileID: req.FileID, Locale: req.Locale, OverrideFormat: req.OverrideFormat, Fallback: req.Fallback, Separator: sep})
	if err != nil {
		return ExportFileResponse{}, err
	}
	return ExportFileResponse{Filename: res.Filename, Content: res.Content}, nil
}

// NewDefaultExporterRegistry registers every exporter the workbench ships.
func NewDefaultExporterRegistry() *exreg.Registry {
	reg := exreg.New()
	reg.Register(qtts.New())
	reg.Register(csvexp.New())
	reg.Register(lookupjson.New())
	return reg
}
