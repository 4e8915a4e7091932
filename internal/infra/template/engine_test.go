package template

import (
	"errors"
	"strings"
	"testing"

	"contactdesk/internal/domain/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapSource map[string]string

func (m mapSource) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func sampleParams() notification.Parameters {
	return notification.Parameters{
		notification.FieldName:        "山田太郎",
		notification.FieldEmail:       "a@b.com",
		notification.FieldSubject:     "質問",
		notification.FieldCompany:     "",
		notification.FieldDepartment:  "",
		notification.FieldPhone:       "",
		notification.FieldMessage:     "テスト",
		notification.FieldSubmittedAt: "2024/01/15 10:30",
	}
}

func newEngine(t *testing.T, overrides notification.ConfigSource) *Engine {
	t.Helper()
	e, err := NewEngine(overrides)
	require.NoError(t, err)
	return e
}

func TestParseSections(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		want    []segment
		wantErr string
	}{
		{
			name: "plain text",
			src:  "hello {name}",
			want: []segment{{text: "hello {name}"}},
		},
		{
			name: "single section",
			src:  "a{if:company}B{/if:company}c",
			want: []segment{{text: "a"}, {key: "company", text: "B"}, {text: "c"}},
		},
		{
			name: "adjacent sections",
			src:  "{if:a}1{/if:a}{if:b}2{/if:b}",
			want: []segment{{key: "a", text: "1"}, {key: "b", text: "2"}},
		},
		{
			name:    "nested",
			src:     "{if:a}{if:b}x{/if:b}{/if:a}",
			wantErr: `conditional "b" opened inside "a"`,
		},
		{
			name:    "end without begin",
			src:     "x{/if:a}",
			wantErr: `end of conditional "a" without a matching begin`,
		},
		{
			name:    "begin never closed",
			src:     "{if:a}x",
			wantErr: `conditional "a" is never closed`,
		},
		{
			name:    "wrong key closed",
			src:     "{if:a}x{/if:b}",
			wantErr: `end of conditional "b" while "a" is open`,
		},
		{
			name:    "empty key",
			src:     "{if:}x",
			wantErr: "malformed conditional marker",
		},
		{
			name:    "unterminated marker",
			src:     "{if:company x",
			wantErr: "malformed conditional marker",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSections(tt.src)
			if tt.wantErr != "" {
				var cfgErr *notification.ConfigurationError
				require.True(t, errors.As(err, &cfgErr), "expected ConfigurationError, got %v", err)
				assert.Contains(t, cfgErr.Reason, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderConfirmationExample(t *testing.T) {
	e := newEngine(t, nil)

	msg, err := e.Render(notification.TypeConfirmation, sampleParams())
	require.NoError(t, err)

	assert.Contains(t, msg.Text, "山田太郎 様")
	assert.Contains(t, msg.Text, "【ご所属】"+notification.NotProvided)
	assert.NotContains(t, msg.Text, "【会社名】")
	assert.NotContains(t, msg.Text, "【部署名】")
	assert.Contains(t, msg.HTML, "山田太郎 様")
	assert.Equal(t, "お問い合わせありがとうございます", msg.Subject)
}

func TestRenderCompanySection(t *testing.T) {
	e := newEngine(t, nil)

	t.Run("empty company", func(t *testing.T) {
		msg, err := e.Render(notification.TypeAdminNotification, sampleParams())
		require.NoError(t, err)
		assert.NotContains(t, msg.Text, "会社名")
		assert.NotContains(t, msg.HTML, "会社名")
	})

	t.Run("absent company", func(t *testing.T) {
		params := sampleParams()
		delete(params, notification.FieldCompany)

		msg, err := e.Render(notification.TypeAdminNotification, params)
		require.NoError(t, err)
		assert.NotContains(t, msg.Text, "会社名")
		assert.NotContains(t, msg.HTML, "会社名")
	})

	t.Run("present company", func(t *testing.T) {
		params := sampleParams().With(notification.FieldCompany, "株式会社サンプル")

		msg, err := e.Render(notification.TypeAdminNotification, params)
		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(msg.Text, "【会社名】株式会社サンプル"))
		assert.Equal(t, 1, strings.Count(msg.Text, "株式会社サンプル"))
		assert.Equal(t, 1, strings.Count(msg.HTML, "株式会社サンプル"))
	})
}

func TestRenderIsDeterministic(t *testing.T) {
	e := newEngine(t, nil)
	params := sampleParams().With(notification.FieldCompany, "ACME")

	for _, typ := range notification.AllTypes() {
		first, err := e.Render(typ, params)
		require.NoError(t, err)
		second, err := e.Render(typ, params)
		require.NoError(t, err)
		assert.Equal(t, first, second, "type %s", typ)
	}
}

func TestRenderLeavesNoKnownPlaceholders(t *testing.T) {
	e := newEngine(t, nil)

	paramSets := map[string]notification.Parameters{
		"full":   sampleParams().With(notification.FieldCompany, "ACME").With(notification.FieldPhone, "090-1234-5678"),
		"sparse": sampleParams(),
		"empty":  {},
	}

	for name, params := range paramSets {
		for _, typ := range notification.AllTypes() {
			msg, err := e.Render(typ, params)
			require.NoError(t, err, "%s/%s", name, typ)

			for _, out := range []string{msg.Subject, msg.Text, msg.HTML} {
				for _, field := range notification.KnownFields() {
					assert.NotContains(t, out, "{"+field+"}", "%s/%s", name, typ)
				}
				assert.NotContains(t, out, "{if:")
				assert.NotContains(t, out, "{/if:")
				assert.NotContains(t, out, "{style:")
			}
		}
	}
}

func TestRenderSubstitutionIsLiteral(t *testing.T) {
	src := notification.TemplateSource{
		Subject: "{subject}",
		Text:    "{message}",
		HTML:    "<p>{message}</p>",
	}
	params := notification.Parameters{
		notification.FieldName:    "Alice",
		notification.FieldSubject: "{name}",
		notification.FieldMessage: "{name} <b>hi</b>\nbye",
	}

	msg, err := RenderSource(src, params)
	require.NoError(t, err)

	assert.Equal(t, "{name}", msg.Subject)
	assert.Equal(t, "{name} <b>hi</b>\nbye", msg.Text)
	assert.Equal(t, "<p>{name} &lt;b&gt;hi&lt;/b&gt;<br>bye</p>", msg.HTML)
}

func TestRenderMissingAndUnknownFields(t *testing.T) {
	src := notification.TemplateSource{
		Text: "[{company}] [{message}] [{unknown}] [{department}] [{style:none}]",
	}
	params := notification.Parameters{
		notification.FieldDepartment: "",
	}

	msg, err := RenderSource(src, params)
	require.NoError(t, err)

	assert.Equal(t, "[] [] [] ["+notification.NotProvided+"] [{style:none}]", msg.Text)
}

func TestRenderConditionalUsesRawValue(t *testing.T) {
	src := notification.TemplateSource{
		Text: "{if:company}会社: {company}{/if:company}{if:phone}tel{/if:phone}",
	}

	msg, err := RenderSource(src, notification.Parameters{notification.FieldCompany: "X"})
	require.NoError(t, err)
	assert.Equal(t, "会社: X", msg.Text)
}

func TestRenderStylesOnlyInHTML(t *testing.T) {
	src := notification.TemplateSource{
		Text: "{style:footer}",
		HTML: `<p style="{style:footer}">{style:nope}</p>`,
	}

	msg, err := RenderSource(src, notification.Parameters{})
	require.NoError(t, err)

	assert.Equal(t, "{style:footer}", msg.Text)
	assert.Equal(t, `<p style="`+styles["footer"]+`">{style:nope}</p>`, msg.HTML)
}

func TestResolveOverrides(t *testing.T) {
	overrides := mapSource{
		OverrideKey(notification.TypeConfirmation, "subject"): "Thanks, {name}",
		OverrideKey(notification.TypeConfirmation, "html"):    "",
	}
	e := newEngine(t, overrides)

	src, err := e.Resolve(notification.TypeConfirmation)
	require.NoError(t, err)

	assert.Equal(t, "Thanks, {name}", src.Subject)
	assert.Equal(t, confirmationText, src.Text)
	assert.Equal(t, confirmationHTML, src.HTML)

	src, err = e.Resolve(notification.TypeAdminNotification)
	require.NoError(t, err)
	assert.Equal(t, defaults[notification.TypeAdminNotification], src)
}

func TestResolveReadsOverridesOnEveryCall(t *testing.T) {
	overrides := mapSource{}
	e := newEngine(t, overrides)

	msg, err := e.Render(notification.TypeConfirmation, sampleParams())
	require.NoError(t, err)
	assert.Equal(t, "お問い合わせありがとうございます", msg.Subject)

	overrides[OverrideKey(notification.TypeConfirmation, "subject")] = "Re: {subject}"

	msg, err = e.Render(notification.TypeConfirmation, sampleParams())
	require.NoError(t, err)
	assert.Equal(t, "Re: 質問", msg.Subject)
}

func TestResolveUnknownType(t *testing.T) {
	e := newEngine(t, nil)

	_, err := e.Resolve(notification.NotificationType("sms_alert"))
	require.Error(t, err)
}

func TestRenderMalformedOverride(t *testing.T) {
	overrides := mapSource{
		OverrideKey(notification.TypeAdminNotification, "text"): "{if:company}{company}",
	}
	e := newEngine(t, overrides)

	_, err := e.Render(notification.TypeAdminNotification, sampleParams())
	require.Error(t, err)

	var cfgErr *notification.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, notification.TypeAdminNotification, cfgErr.Type)
	assert.Equal(t, "text", cfgErr.Field)
	assert.Equal(t, 0, cfgErr.Offset)
}

func TestDefaultsCoverEveryType(t *testing.T) {
	for _, typ := range notification.AllTypes() {
		src, ok := defaults[typ]
		require.True(t, ok, "missing default for %s", typ)
		for _, field := range []string{src.Subject, src.Text, src.HTML} {
			_, err := parseSections(field)
			assert.NoError(t, err, "default %s", typ)
		}
	}
}
