package javaemitter

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/mark3labs/eeclientgen/internal/engine"
	"github.com/mark3labs/eeclientgen/internal/engine/enginetest"
	"github.com/mark3labs/eeclientgen/internal/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emit(t *testing.T, p *spec.Project) *engine.Artifact {
	t.Helper()
	art, err := New(engine.DefaultSettings()).Emit(engine.NewSession(ID), p)
	require.NoError(t, err)
	require.True(t, art.Bundle)
	require.Equal(t, "ElasticEmailClient.zip", art.Name)
	return art
}

func entry(t *testing.T, art *engine.Artifact, path string) string {
	t.Helper()
	e, ok := art.Entry(path)
	require.True(t, ok, "missing entry %s", path)
	return string(e.Content)
}

func TestEmit_BundleLayout(t *testing.T) {
	t.Parallel()
	art := emit(t, enginetest.Full())

	var paths []string
	for _, e := range art.Entries {
		paths = append(paths, e.Path)
	}
	assert.Equal(t, []string{
		"ElasticEmailClient/API.java",
		"ElasticEmailClient/APIResponse.java",
		"ElasticEmailClient/ApiException.java",
		"ElasticEmailClient/ApiTypes.java",
		"ElasticEmailClient/FileData.java",
		"ElasticEmailClient/functions/Attachment.java",
		"ElasticEmailClient/functions/Email.java",
		"ElasticEmailClient/functions/List.java",
	}, paths)
	assert.Contains(t, entry(t, art, "ElasticEmailClient/API.java"), `public static String API_KEY = "00000000-0000-0000-0000-000000000000";`)
}

func TestEmit_SendScenario(t *testing.T) {
	t.Parallel()
	out := entry(t, emit(t, enginetest.Minimal()), "ElasticEmailClient/functions/Email.java")

	assert.Contains(t, out, "package ElasticEmailClient.functions;")
	assert.Contains(t, out, "public class Email extends API {")
	assert.Contains(t, out, "public String send(String to, String subject) throws Exception {")
	assert.Contains(t, out, `values.put("apikey", API_KEY);`)
	assert.Contains(t, out, `values.put("subject", str(subject));`)
	assert.Contains(t, out, `return uploadValues(API_URI + "/email/send", values, String.class);`)
	assert.Contains(t, out, "@param subject")
	assert.Contains(t, out, "(default null)")
}

func TestEmit_Transports(t *testing.T) {
	t.Parallel()
	out := entry(t, emit(t, enginetest.Full()), "ElasticEmailClient/functions/Attachment.java")

	assert.Contains(t, out, `return httpPostFile(API_URI + "/attachment/upload", fileList(attachmentFile), values, ApiTypes.Attachment.class);`)
	assert.Contains(t, out, `httpPutFile(API_URI + "/attachment/replace", content, values, VoidApiResponse.class);`)
	assert.Contains(t, out, `return httpGetFile(API_URI + "/attachment/get", values);`)
	assert.Contains(t, out, "public FileData get(long attachmentID) throws Exception {")
	assert.NotContains(t, out, `values.put("attachmentFile"`)
	assert.NotContains(t, out, `values.put("content"`)
}

func TestEmit_ListWrappers(t *testing.T) {
	t.Parallel()
	s := engine.NewSession(ID)
	art, err := New(engine.DefaultSettings()).Emit(s, enginetest.Full())
	require.NoError(t, err)

	assert.Equal(t, []string{"Contact", "String"}, s.Lists.Names())
	types := entry(t, art, "ElasticEmailClient/ApiTypes.java")
	assert.Contains(t, types, "public static class ContactList extends ArrayList<Contact> {")
	assert.Contains(t, types, "public static class StringList extends ArrayList<String> {")

	list := entry(t, art, "ElasticEmailClient/functions/List.java")
	assert.Contains(t, list, "public ApiTypes.ContactList load(String listName, ApiTypes.EmailStatus status, int limit, Boolean active) throws Exception {")
	assert.Contains(t, list, `values.put("emails", join(emails, ","));`)
	assert.Contains(t, list, `putAll(values, "merge", merge);`)
	assert.Contains(t, list, "ApiTypes.ContactList.class")
	assert.Contains(t, list, "(default ApiTypes.EmailStatus.SENT)")
}

func TestEmit_FreshSessionPerCall(t *testing.T) {
	t.Parallel()
	e := New(engine.DefaultSettings())
	_, err := e.Emit(engine.NewSession(ID), enginetest.Full())
	require.NoError(t, err)

	s := engine.NewSession(ID)
	art, err := e.Emit(s, enginetest.Minimal())
	require.NoError(t, err)
	assert.Zero(t, s.Lists.Len())
	assert.NotContains(t, entry(t, art, "ElasticEmailClient/ApiTypes.java"), "ContactList")
}

func TestEmit_Classes(t *testing.T) {
	t.Parallel()
	out := entry(t, emit(t, enginetest.Full()), "ElasticEmailClient/ApiTypes.java")

	assert.Contains(t, out, "public enum EmailStatus {")
	assert.Contains(t, out, "SENT(1),")
	assert.Contains(t, out, "FAILED(2);")
	assert.Contains(t, out, `@JsonProperty("Email")`)
	assert.Contains(t, out, "public String email;")
	assert.Contains(t, out, "public HashMap<String, Integer> custom;")
	assert.Less(t, strings.Index(out, "class Attachment"), strings.Index(out, "class Contact"))
}

func TestEmit_Deterministic(t *testing.T) {
	t.Parallel()
	assert.Equal(t, emit(t, enginetest.Full()).Digest(), emit(t, enginetest.Full()).Digest())
}

func TestEmit_ReservedNames(t *testing.T) {
	t.Parallel()
	art := emit(t, enginetest.WithReservedNames("class"))
	out := entry(t, art, "ElasticEmailClient/functions/EEclass.java")
	assert.Contains(t, out, "public class EEclass extends API {")
	assert.Contains(t, out, `"/class/class"`)
}

func TestEmit_UnknownPrimitive(t *testing.T) {
	t.Parallel()
	_, err := New(engine.DefaultSettings()).Emit(engine.NewSession(ID), enginetest.WithUnknownPrimitive())
	var ute *engine.UnknownTypeError
	require.True(t, errors.As(err, &ute))
	assert.Equal(t, ID, ute.Backend)
}

func TestTypeMapper(t *testing.T) {
	t.Parallel()
	m := NewTypeMapper(engine.NewSession(ID))
	tests := []struct {
		name     string
		dt       *spec.DataType
		forParam bool
		expected string
	}{
		{"void", nil, false, "void"},
		{"dictionary boxes", &spec.DataType{TypeName: spec.String("String,Int64"), IsDictionary: true}, false, "HashMap<String, Long>"},
		{"file", &spec.DataType{TypeName: spec.String("File"), IsFile: true}, true, "FileData"},
		{"file list param", &spec.DataType{TypeName: spec.String("File"), IsFile: true, IsList: true}, true, "Iterable<FileData>"},
		{"int list", &spec.DataType{TypeName: spec.String("Int32"), IsPrimitive: true, IsList: true}, false, "ArrayList<Integer>"},
		{"int list param", &spec.DataType{TypeName: spec.String("Int32"), IsPrimitive: true, IsList: true}, true, "Iterable<Integer>"},
		{"array", &spec.DataType{TypeName: spec.String("Guid"), IsPrimitive: true, IsArray: true}, false, "UUID[]"},
		{"custom list", &spec.DataType{TypeName: spec.String("Contact"), IsList: true}, false, "ApiTypes.ContactList"},
	}
	for _, tt := range tests {
		got, err := m.Resolve(tt.dt, "void", tt.forParam)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.expected, got, tt.name)
	}
}
