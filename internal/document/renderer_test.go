package document

//go:generate mockgen -source=renderer.go -destination=mocks/mocks.go -package=mocks Converter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"praticai/internal/document/mocks"
	"praticai/internal/forms/models"
)

const assetsDir = "../../assets/templates"

type RendererSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	converter *mocks.MockConverter
	renderer  *Renderer
	outDir    string
}

func TestRendererSuite(t *testing.T) {
	suite.Run(t, new(RendererSuite))
}

func (s *RendererSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.converter = mocks.NewMockConverter(s.ctrl)
	s.outDir = s.T().TempDir()

	r, err := New(assetsDir, s.converter,
		WithClock(func() time.Time { return time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC) }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithTimeout(5*time.Second),
	)
	s.Require().NoError(err)
	s.renderer = r
}

func (s *RendererSuite) TearDownTest() {
	s.ctrl.Finish()
}

func vatForm() *models.VatOpeningRequest {
	return &models.VatOpeningRequest{
		Nome:                "Mario",
		Cognome:             "Rossi",
		CodiceFiscale:       "RSSMRA80A01H501U",
		Indirizzo:           "Via Roma",
		Civico:              "10",
		Cap:                 "00100",
		Comune:              "Roma",
		Provincia:           "RM",
		CodiceAteco:         "62.01.00",
		DescrizioneAttivita: "Sviluppo software",
		RegimeFiscale:       models.RegimeForfettario,
		DataInizio:          "2024-01-15",
		Email:               "mario@example.com",
	}
}

func (s *RendererSuite) TestData() {
	s.Run("vat derived fields", func() {
		data := s.renderer.Data(vatForm())
		s.Equal("03/03/2025", data["data_compilazione"])
		s.Equal("15/01/2024", data["dataInizioFormatted"])
		s.Equal("checked", data["regime_forfettario_checked"])
		s.Equal("", data["regime_ordinario_checked"])
		s.Equal(Placeholder, data["telefono"])
		s.Equal("Rossi", data["cognome"])
	})

	s.Run("civil status flags and label", func() {
		form := &models.CivilStatusRequest{
			Nome:        "Anna",
			Cognome:     "Neri",
			DataNascita: "1985-04-10",
			StatoCivile: models.StatusWidowed,
			DataDecesso: "2022-01-30",
		}
		data := s.renderer.Data(form)
		s.Equal("checked", data["stato_vedovo_checked"])
		s.Equal("", data["stato_coniugato_checked"])
		s.Equal("Vedovo/a", data["statoCivileLabel"])
		s.Equal("30/01/2022", data["dataDecessoFormatted"])
		s.Equal(Placeholder, data["motivoRichiesta"])
	})
}

func (s *RendererSuite) TestRenderHTMLForEveryForm() {
	forms := []models.Form{
		vatForm(),
		&models.ResidenceRequest{Nome: "Giulia", Cognome: "Bianchi", DataNascita: "1990-02-01"},
		&models.BirthRequest{NomeNato: "Sofia", CognomeNato: "Verdi", DataNascita: "2020-05-04"},
		&models.CivilStatusRequest{Nome: "Anna", Cognome: "Neri", StatoCivile: models.StatusMarried, NomeConiuge: "Paolo"},
	}
	for _, form := range forms {
		s.Run(string(form.Type()), func() {
			html, err := s.renderer.RenderHTML(form)
			s.Require().NoError(err)
			s.Contains(string(html), "03/03/2025")
			surname, _ := form.Subject()
			s.Contains(string(html), surname)
		})
	}
}

func (s *RendererSuite) TestRenderHTMLEscapesInput() {
	form := vatForm()
	form.DescrizioneAttivita = "<script>alert(1)</script>"
	html, err := s.renderer.RenderHTML(form)
	s.Require().NoError(err)
	s.NotContains(string(html), "<script>")
}

func (s *RendererSuite) TestRender() {
	s.Run("writes converter output to path", func() {
		path := filepath.Join(s.outDir, "nested", "aa912_Rossi_Mario_x.pdf")
		s.converter.EXPECT().Convert(gomock.Any(), gomock.Any()).Return([]byte("%PDF-1.4 fake"), nil)

		s.Require().NoError(s.renderer.Render(context.Background(), vatForm(), path))

		content, err := os.ReadFile(path)
		s.Require().NoError(err)
		s.Equal("%PDF-1.4 fake", string(content))
		s.assertNoPendingFiles(filepath.Dir(path))
	})

	s.Run("converter failure leaves no file", func() {
		path := filepath.Join(s.outDir, "failed.pdf")
		s.converter.EXPECT().Convert(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))

		err := s.renderer.Render(context.Background(), vatForm(), path)
		s.Require().Error(err)
		s.NoFileExists(path)
		s.assertNoPendingFiles(s.outDir)
	})

	s.Run("empty output is rejected", func() {
		path := filepath.Join(s.outDir, "empty.pdf")
		s.converter.EXPECT().Convert(gomock.Any(), gomock.Any()).Return([]byte{}, nil)

		err := s.renderer.Render(context.Background(), vatForm(), path)
		s.ErrorIs(err, ErrEmptyDocument)
		s.NoFileExists(path)
	})

	s.Run("conversion runs under a deadline", func() {
		path := filepath.Join(s.outDir, "deadline.pdf")
		s.converter.EXPECT().Convert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ []byte) ([]byte, error) {
				_, ok := ctx.Deadline()
				s.True(ok)
				return []byte("%PDF"), nil
			})
		s.NoError(s.renderer.Render(context.Background(), vatForm(), path))
	})
}

func (s *RendererSuite) TestRenderIsIdempotent() {
	s.converter.EXPECT().Convert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, html []byte) ([]byte, error) {
			return append([]byte("%PDF "), html...), nil
		}).Times(2)

	first := filepath.Join(s.outDir, "first.pdf")
	second := filepath.Join(s.outDir, "second.pdf")
	s.Require().NoError(s.renderer.Render(context.Background(), vatForm(), first))
	s.Require().NoError(s.renderer.Render(context.Background(), vatForm(), second))

	a, err := os.ReadFile(first)
	s.Require().NoError(err)
	b, err := os.ReadFile(second)
	s.Require().NoError(err)
	s.Equal(a, b)
}

func (s *RendererSuite) TestMissingTemplate() {
	empty := s.T().TempDir()
	r, err := New(empty, s.converter)
	s.Require().NoError(err)

	err = r.Render(context.Background(), vatForm(), filepath.Join(s.outDir, "x.pdf"))
	s.ErrorIs(err, ErrTemplateNotFound)
}

func (s *RendererSuite) assertNoPendingFiles(dir string) {
	entries, err := os.ReadDir(dir)
	s.Require().NoError(err)
	for _, e := range entries {
		s.NotContains(e.Name(), ".pending-")
	}
}
