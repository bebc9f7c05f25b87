package movie

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"filmes/errs"
)

var ErrInvalidID = errs.Errorf(errs.ESTORAGE, "invalid movie id")

// Movie is a stored movie record. ID is assigned by the storage backend.
type Movie struct {
	ID          string `json:"_id"`
	Name        string `json:"nome"`
	Genre       string `json:"genero"`
	Director    string `json:"diretor"`
	ReleaseYear int    `json:"anoLancamento"`
	IMDBRating  int    `json:"notaIMDB"`
}

// Number is a numeric field as the client sent it. It accepts a JSON number
// or a string so that non-numeric input reaches validation instead of failing
// the request decode. JSON numbers are kept in their shortest decimal form,
// so 1999.0 reads as "1999" while the string "1999.0" is kept verbatim.
type Number string

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = ""
		return nil
	}

	var s string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = Number(s)
		return nil
	}

	*n = Number(canonicalNumber(b))
	return nil
}

func canonicalNumber(b []byte) []byte {
	if len(b) == 0 || (b[0] != '-' && (b[0] < '0' || b[0] > '9')) || !json.Valid(b) {
		return b
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil || math.IsInf(f, 0) {
		return b
	}
	return []byte(strconv.FormatFloat(f, 'f', -1, 64))
}

func (n Number) MarshalJSON() ([]byte, error) {
	if n.isLiteral() {
		return []byte(n), nil
	}
	return json.Marshal(string(n))
}

func (n Number) isLiteral() bool {
	if n == "" {
		return false
	}
	if c := n[0]; c != '-' && (c < '0' || c > '9') {
		return false
	}
	return json.Valid([]byte(n))
}

// Int returns the value as an integer, or nil if it is not one.
func (n Number) Int() *int {
	v, err := strconv.Atoi(string(n))
	if err != nil {
		return nil
	}
	return &v
}

// Input is a movie as submitted by a client, before validation.
type Input struct {
	ID          string `json:"_id"`
	Name        string `json:"nome"`
	Genre       string `json:"genero"`
	Director    string `json:"diretor"`
	ReleaseYear Number `json:"anoLancamento"`
	IMDBRating  Number `json:"notaIMDB"`

	// JSON values of the numeric fields as received, echoed back in
	// validation errors.
	rawReleaseYear json.RawMessage
	rawIMDBRating  json.RawMessage
}

func (in *Input) UnmarshalJSON(b []byte) error {
	type plain Input
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}

	var raw struct {
		ReleaseYear json.RawMessage `json:"anoLancamento"`
		IMDBRating  json.RawMessage `json:"notaIMDB"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*in = Input(p)
	in.rawReleaseYear = raw.ReleaseYear
	in.rawIMDBRating = raw.IMDBRating
	return nil
}

// Movie converts a validated input into a Movie.
func (in Input) Movie() Movie {
	m := Movie{
		ID:       in.ID,
		Name:     in.Name,
		Genre:    in.Genre,
		Director: in.Director,
	}
	if v := in.ReleaseYear.Int(); v != nil {
		m.ReleaseYear = *v
	}
	if v := in.IMDBRating.Int(); v != nil {
		m.IMDBRating = *v
	}
	return m
}

// InsertResult reports the identifier assigned to a new movie.
type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

// UpdateResult summarizes an update. A zero MatchedCount means no movie had
// the given id; that is not treated as an error.
type UpdateResult struct {
	Acknowledged  bool   `json:"acknowledged"`
	MatchedCount  int64  `json:"matchedCount"`
	ModifiedCount int64  `json:"modifiedCount"`
	UpsertedCount int64  `json:"upsertedCount"`
	UpsertedID    string `json:"upsertedId,omitempty"`
}

// DeleteResult summarizes a delete.
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}
