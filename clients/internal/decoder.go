package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/puravparab/PaperTrail/errors"
)

// DecodeResponse decodes the JSON body of res into v and closes it. A non
// 200 response is turned into an error carrying the status code.
func DecodeResponse(res *http.Response, v interface{}) error {
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		data, err := io.ReadAll(res.Body)
		if err != nil {
			return err
		}

		var callErr struct {
			Error string `json:"error"`
		}
		msg := string(data)
		if err := json.Unmarshal(data, &callErr); err == nil && callErr.Error != "" {
			msg = callErr.Error
		}
		return errors.New(fmt.Sprintf("error in call: %s", msg), errors.WithCode(res.StatusCode))
	}

	return json.NewDecoder(res.Body).Decode(v)
}
