package atlasrun

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"

	"github.com/agg-go/vecatlas/internal/rasterpool"
)

// inlineWorker is a rasterpool.Worker that processes requests in-process
// instead of over a pipe to a separate executable: it decodes an exported
// image payload and re-encodes it as PNG, normalizing whatever format the
// container embedded it as into the one format every browser's SVG <image>
// handles the same way. This is the "external rasterization" step the
// worker-pool protocol describes, run locally rather than handed off to a
// dedicated rasterizer process.
type inlineWorker struct {
	reqCh  chan rasterpool.Request
	respCh chan rasterpool.Response
	done   chan struct{}
}

func newInlineWorker() *inlineWorker {
	w := &inlineWorker{
		reqCh:  make(chan rasterpool.Request, 1),
		respCh: make(chan rasterpool.Response, 1),
		done:   make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *inlineWorker) run() {
	for {
		select {
		case req := <-w.reqCh:
			w.respCh <- rasterize(req)
		case <-w.done:
			return
		}
	}
}

func rasterize(req rasterpool.Request) rasterpool.Response {
	img, _, err := image.Decode(bytes.NewReader(req.Payload))
	if err != nil {
		// not a format image.Decode recognizes (or already raw); pass
		// the payload through unchanged rather than failing the request.
		return rasterpool.Response{ID: req.ID, Image: req.Payload}
	}
	var out bytes.Buffer
	if err := png.Encode(&out, img); err != nil {
		return rasterpool.Response{ID: req.ID, Err: fmt.Sprintf("rasterworker: encoding png: %v", err)}
	}
	return rasterpool.Response{ID: req.ID, Image: out.Bytes()}
}

func (w *inlineWorker) Send(req rasterpool.Request) error {
	select {
	case w.reqCh <- req:
		return nil
	case <-w.done:
		return fmt.Errorf("rasterworker: closed")
	}
}

func (w *inlineWorker) Recv() (rasterpool.Response, error) {
	select {
	case resp := <-w.respCh:
		return resp, nil
	case <-w.done:
		return rasterpool.Response{}, fmt.Errorf("rasterworker: closed")
	}
}

func (w *inlineWorker) Close() error {
	select {
	case <-w.done:
	default:
		close(w.done)
	}
	return nil
}
