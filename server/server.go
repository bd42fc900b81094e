package server

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// Server serves the page and a websocket for its patch stream. The page's
// patch channel has a single consumer, so this effectively serves one client
// at a time; muxing the channel per client is the obvious next step if more
// are ever needed.
type Server struct {
	addr string
	page *Page
}

// New returns a server for the given listen address and page.
func New(addr string, page *Page) *Server {
	return &Server{addr: addr, page: page}
}

// Serve blocks, serving the index page and websocket.
func (server *Server) Serve() (err error) {
	router := mux.NewRouter()
	router.HandleFunc("/", server.serveIndex).Methods(http.MethodGet)
	router.HandleFunc("/ws", server.serveWebsocket)

	if err = http.ListenAndServe(server.addr, router); err != nil {
		err = fmt.Errorf("serve: %w", err)
	}

	return
}

func (server *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")

	if err := renderPage(w, server.page); err != nil {
		log.Println("render:", err)
		_, _ = w.Write([]byte(err.Error()))
	}
}

func (server *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	pub, err := newPublisher(server.page.Updates(), w, r)
	if err != nil {
		log.Println("upgrade:", err)
		return
	}

	if err := pub.sync(); err != nil {
		log.Println("websocket:", err)
	}
}

func renderPage(w io.Writer, page *Page) (err error) {
	t := template.New("index.html")
	var name string
	if name, err = page.Parse(t); err != nil {
		return
	}
	if _, err = t.Parse(`{{ template "` + name + `" . }}`); err != nil {
		return
	}

	err = t.Execute(w, nil)
	return
}
