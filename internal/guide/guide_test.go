package guide_test

//go:generate mockgen -source=guide.go -destination=mocks/mocks.go -package=mocks Drafter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"praticai/internal/forms/models"
	"praticai/internal/guide"
	"praticai/internal/guide/mocks"
	"praticai/pkg/platform/circuit"
	"praticai/pkg/platform/sentinel"
)

type GuideSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	drafter *mocks.MockDrafter
	service *guide.Service
}

func TestGuideSuite(t *testing.T) {
	suite.Run(t, new(GuideSuite))
}

func (s *GuideSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.drafter = mocks.NewMockDrafter(s.ctrl)
	svc, err := guide.New(s.drafter,
		guide.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		guide.WithTimeout(2*time.Second),
	)
	s.Require().NoError(err)
	s.service = svc
}

func (s *GuideSuite) TearDownTest() {
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
		DescrizioneAttivita: "Sviluppo software & consulenza",
		RegimeFiscale:       models.RegimeForfettario,
		DataInizio:          "2024-01-15",
		Email:               "mario@example.com",
	}
}

func (s *GuideSuite) TestRequest() {
	s.Run("vat prompt carries user data", func() {
		req, err := s.service.Request(vatForm())
		s.Require().NoError(err)
		s.Contains(req.Prompt, "- Nome: Mario Rossi")
		s.Contains(req.Prompt, "- Telefono: Non fornito")
		s.Contains(req.Prompt, "- Data inizio attività: 15/01/2024")
		s.Contains(req.Prompt, "Sviluppo software & consulenza")
		s.Contains(req.System, "consulente fiscale")
		s.InDelta(0.3, req.Temperature, 0.0001)
		s.Equal(2000, req.MaxTokens)
	})

	s.Run("birth prompt defaults optional fields", func() {
		req, err := s.service.Request(&models.BirthRequest{
			NomeDichiarante: "Luca", CognomeDichiarante: "Verdi",
			NomeNato: "Sofia", CognomeNato: "Verdi", DataNascita: "2020-05-04",
		})
		s.Require().NoError(err)
		s.Contains(req.Prompt, "- Ospedale/Struttura: Non specificato")
		s.Contains(req.Prompt, "- Motivo richiesta: Non specificato")
		s.Contains(req.Prompt, "- Nato/a: Sofia Verdi")
	})

	s.Run("civil status uses label and facts", func() {
		req, err := s.service.Request(&models.CivilStatusRequest{
			Nome: "Anna", Cognome: "Neri",
			StatoCivile: models.StatusSeparated, DataSeparazione: "2019-03-01", TribunaleCompetente: "Tribunale di Roma",
		})
		s.Require().NoError(err)
		s.Contains(req.Prompt, "- Stato civile: Separato/a")
		s.Contains(req.Prompt, "- Dati aggiuntivi: Data separazione: 01/03/2019; Tribunale competente: Tribunale di Roma")
		s.Equal(2500, req.MaxTokens)
	})

	s.Run("civil status without facts", func() {
		req, err := s.service.Request(&models.CivilStatusRequest{Nome: "Anna", Cognome: "Neri", StatoCivile: models.StatusSingle})
		s.Require().NoError(err)
		s.Contains(req.Prompt, "- Dati aggiuntivi: Nessun dato aggiuntivo")
	})
}

func (s *GuideSuite) TestDraft() {
	s.Run("success renders html", func() {
		s.drafter.EXPECT().Draft(gomock.Any(), gomock.Any()).Return("  ## Passi\n\n1. **Prepara** i documenti\n", nil)

		g := s.service.Draft(context.Background(), vatForm())
		s.False(g.Degraded)
		s.Equal("## Passi\n\n1. **Prepara** i documenti", g.Text)
		s.Contains(g.HTML, "<h2")
		s.Contains(g.HTML, "<strong>Prepara</strong>")
	})

	s.Run("missing credential degrades with reason", func() {
		s.drafter.EXPECT().Draft(gomock.Any(), gomock.Any()).Return("", fmt.Errorf("openai: %w", sentinel.ErrUnavailable))

		g := s.service.Draft(context.Background(), vatForm())
		s.True(g.Degraded)
		s.Equal("⚠️ Guida AI non disponibile: API key mancante. Il modulo AA9/12 è stato generato correttamente.", g.Text)
	})

	s.Run("service error degrades", func() {
		s.drafter.EXPECT().Draft(gomock.Any(), gomock.Any()).Return("", errors.New("status 500"))

		g := s.service.Draft(context.Background(), &models.ResidenceRequest{Nome: "Giulia", Cognome: "Bianchi"})
		s.True(g.Degraded)
		s.Equal(guide.ReasonUnavailable, g.Reason)
		s.Contains(g.Text, "L'autocertificazione è stata generata correttamente.")
		s.NotContains(g.Text, "status 500")
	})

	s.Run("timeout degrades", func() {
		s.drafter.EXPECT().Draft(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ guide.DraftRequest) (string, error) {
				_, ok := ctx.Deadline()
				s.True(ok)
				return "", context.DeadlineExceeded
			})

		g := s.service.Draft(context.Background(), vatForm())
		s.True(g.Degraded)
		s.Equal(guide.ReasonTimeout, g.Reason)
	})

	s.Run("blank answer degrades", func() {
		s.drafter.EXPECT().Draft(gomock.Any(), gomock.Any()).Return("   ", nil)

		g := s.service.Draft(context.Background(), vatForm())
		s.True(g.Degraded)
		s.Equal(guide.ReasonEmpty, g.Reason)
	})
}

func (s *GuideSuite) TestBreakerSkipsDrafterWhileOpen() {
	breaker := circuit.New("openai", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour))
	svc, err := guide.New(s.drafter,
		guide.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		guide.WithBreaker(breaker),
	)
	s.Require().NoError(err)

	s.drafter.EXPECT().Draft(gomock.Any(), gomock.Any()).Return("", errors.New("status 503")).Times(2)

	svc.Draft(context.Background(), vatForm())
	svc.Draft(context.Background(), vatForm())
	s.True(breaker.IsOpen())

	g := svc.Draft(context.Background(), vatForm())
	s.True(g.Degraded)
	s.Equal(guide.ReasonUnavailable, g.Reason)
}

func (s *GuideSuite) TestBreakerIgnoresMissingCredential() {
	breaker := circuit.New("openai", circuit.WithFailureThreshold(1))
	svc, err := guide.New(s.drafter, guide.WithBreaker(breaker))
	s.Require().NoError(err)

	s.drafter.EXPECT().Draft(gomock.Any(), gomock.Any()).Return("", sentinel.ErrUnavailable)
	svc.Draft(context.Background(), vatForm())
	s.False(breaker.IsOpen())
}

func TestDegradedText(t *testing.T) {
	assert.Equal(t,
		"⚠️ Guida AI non disponibile: API key mancante. L'autocertificazione di stato civile è stata generata correttamente.",
		guide.DegradedText(models.FormCivilStatus, guide.ReasonMissingKey),
	)
}

func TestToHTMLSanitizes(t *testing.T) {
	out, err := guide.ToHTML("Ciao [link](javascript:alert(1)) <script>alert(1)</script>")
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "javascript:")
}
