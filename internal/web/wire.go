package web

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
)

// maxBody bounds how much of a request body is read.
const maxBody = 4096

// ReadRequest reads one HTTP request from r. A POST body is decoded as
// form fields whatever its declared content type.
func ReadRequest(r *bufio.Reader) (Request, error) {
	hr, err := http.ReadRequest(r)
	if err != nil {
		return Request{}, fmt.Errorf("read request: %w", err)
	}
	defer hr.Body.Close()

	req := Request{Method: hr.Method, Path: hr.URL.Path}
	if hr.Method != http.MethodPost {
		return req, nil
	}

	body, err := io.ReadAll(io.LimitReader(hr.Body, maxBody))
	if err != nil {
		return Request{}, fmt.Errorf("read body: %w", err)
	}
	// ParseQuery keeps the pairs it could decode; a malformed pair only
	// loses that field.
	form, err := url.ParseQuery(string(body))
	if err != nil {
		log.Printf("web: malformed form body: %v", err)
	}
	req.Form = form
	return req, nil
}

// WriteResponse writes resp as an HTTP/1.0 response. The only header
// sent is Content-type.
func WriteResponse(w io.Writer, resp Response) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "HTTP/1.0 %d %s\r\n", resp.Status, http.StatusText(resp.Status))
	if resp.ContentType != "" {
		fmt.Fprintf(bw, "Content-type: %s\r\n", resp.ContentType)
	}
	bw.WriteString("\r\n")
	bw.Write(resp.Body)
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}
