package utils

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/upb/webshop/repositories"
)

// ParsePage reads pageNumber, pageSize and sort from the query string.
// Absent values stay zero; range checks are left to the services.
func ParsePage(r *http.Request) (repositories.Page, error) {
	q := r.URL.Query()
	page := repositories.Page{Sort: q.Get("sort")}

	var err error
	if page.Number, err = queryInt(q.Get("pageNumber"), "pageNumber"); err != nil {
		return page, err
	}
	if page.Size, err = queryInt(q.Get("pageSize"), "pageSize"); err != nil {
		return page, err
	}
	return page, nil
}

func queryInt(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return n, nil
}
