package mg

import (
	"net/url"
	"testing"

	"tsdata-bench/bench"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestURI(t *testing.T) {
	assert.Equal(t, "mongodb://db1.cams:27017", URI(bench.ConnConfig{Host: "db1.cams"}))
	assert.Equal(t, "mongodb://u:p@localhost:27018", URI(bench.ConnConfig{Host: "localhost", Port: 27018, User: "u", Password: "p"}))
}

func TestURIEscapesCredentials(t *testing.T) {
	uri := URI(bench.ConnConfig{Host: "db1", User: "bench", Password: "p@ss:w/rd#"})

	u, err := url.Parse(uri)
	require.NoError(t, err)
	assert.Equal(t, "db1:27017", u.Host)
	pass, _ := u.User.Password()
	assert.Equal(t, "p@ss:w/rd#", pass)

	opts := options.Client().ApplyURI(uri)
	require.NoError(t, opts.Validate())
	require.NotNil(t, opts.Auth)
	assert.Equal(t, "bench", opts.Auth.Username)
	assert.Equal(t, "p@ss:w/rd#", opts.Auth.Password)
	assert.Equal(t, []string{"db1:27017"}, opts.Hosts)
}

func TestPort(t *testing.T) {
	assert.Equal(t, 27017, port(bench.ConnConfig{}))
	assert.Equal(t, 27018, port(bench.ConnConfig{Port: 27018}))
}

func TestItemUsesRowIDAsDocumentID(t *testing.T) {
	item := Item{ID: 3, Created: bench.Created, Value: 0.3}
	raw, err := bson.Marshal(item)
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, int64(3), doc["_id"])
	assert.Equal(t, 0.3, doc["value"])
	assert.Contains(t, doc, "created")
}
