package server

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/kbrou/syscompta/internal/store"
	"github.com/rs/zerolog"
)

type Server struct {
	store    *store.Store
	router   chi.Router
	addr     string
	log      zerolog.Logger
	validate *validator.Validate
}

func New(st *store.Store, addr string, log zerolog.Logger) *Server {
	r := chi.NewRouter()

	s := &Server{
		store:    st,
		router:   r,
		addr:     addr,
		log:      log,
		validate: validator.New(),
	}

	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/clients", s.createClient)
		r.Get("/clients", s.listClients)

		r.Route("/clients/{clientID}", func(r chi.Router) {
			r.Get("/", s.getClient)
			r.Put("/", s.updateClient)
			r.Post("/bootstrap", s.bootstrapClient)
			r.Get("/dashboard", s.getDashboard)

			r.Post("/accounts", s.createAccount)
			r.Get("/accounts", s.listAccounts)
			r.Get("/accounts/search", s.searchAccounts)
			r.Get("/accounts/{id}", s.getAccount)
			r.Put("/accounts/{id}", s.updateAccount)
			r.Patch("/accounts/{id}/active", s.setAccountActive)
			r.Delete("/accounts/{id}", s.deleteAccount)

			r.Post("/journals", s.createJournal)
			r.Get("/journals", s.listJournals)
			r.Get("/journals/{id}", s.getJournal)
			r.Put("/journals/{id}", s.updateJournal)
			r.Delete("/journals/{id}", s.deleteJournal)

			r.Get("/journals/{id}/next-piece", s.nextPieceNumber)
			r.Get("/journals/{id}/entries/{piece}/adjacent", s.adjacentPiece)
			r.Get("/journals/{id}/entries/{piece}/grid", s.prefillGrid)
			r.Post("/journals/{id}/grid/preview", s.previewGrid)
			r.Post("/journals/{id}/grid", s.saveGrid)

			r.Post("/partners", s.createPartner)
			r.Get("/partners", s.listPartners)
			r.Get("/partners/search", s.searchPartners)
			r.Get("/partners/{id}", s.getPartner)
			r.Put("/partners/{id}", s.updatePartner)
			r.Delete("/partners/{id}", s.deletePartner)

			r.Post("/tax-rates", s.createTaxRate)
			r.Get("/tax-rates", s.listTaxRates)
			r.Get("/tax-rates/{id}", s.getTaxRate)
			r.Put("/tax-rates/{id}", s.updateTaxRate)
			r.Delete("/tax-rates/{id}", s.deleteTaxRate)

			r.Post("/entries", s.createEntry)
			r.Get("/entries", s.listEntries)
			r.Get("/entries/{id}", s.getEntry)
			r.Delete("/entries/{id}", s.deleteEntry)
		})
	})

	return s
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) ListenAndServe() error {
	s.log.Info().Str("addr", s.addr).Msg("server listening")
	return http.ListenAndServe(s.addr, s.router)
}

func (s *Server) Serve(ln net.Listener) error {
	s.log.Info().Str("addr", ln.Addr().String()).Msg("server listening")
	return http.Serve(ln, s.router)
}

func (s *Server) Handler() http.Handler {
	return s.router
}
