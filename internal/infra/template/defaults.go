package template

import "contactdesk/internal/domain/notification"

// defaults maps every notification type to its built-in template.
// NewEngine refuses to start if a type is missing here.
var defaults = map[notification.NotificationType]notification.TemplateSource{
	notification.TypeConfirmation: {
		Subject: "お問い合わせありがとうございます",
		Text:    confirmationText,
		HTML:    confirmationHTML,
	},
	notification.TypeAdminNotification: {
		Subject: "【新規お問い合わせ】{subject}（{name} 様）",
		Text:    adminText,
		HTML:    adminHTML,
	},
}

const confirmationText = `{name} 様

お問い合わせいただき、ありがとうございます。
以下の内容で承りました。

【件名】{subject}
【お名前】{name}
【メールアドレス】{email}
【ご所属】{company}
{if:department}【部署名】{department}
{/if:department}{if:phone}【電話番号】{phone}
{/if:phone}【お問い合わせ内容】
{message}

担当者より順次ご連絡させていただきますので、
今しばらくお待ちくださいませ。

※このメールは自動送信されています。
このメールに返信いただいてもお答えできない場合がございます。
`

const confirmationHTML = `<div style="{style:container}">
  <h2 style="{style:heading}">{name} 様</h2>
  <p>お問い合わせいただき、ありがとうございます。<br>
  以下の内容で承りました。</p>
  <table style="{style:table}">
    <tr><th style="{style:label}">件名</th><td style="{style:value}">{subject}</td></tr>
    <tr><th style="{style:label}">お名前</th><td style="{style:value}">{name}</td></tr>
    <tr><th style="{style:label}">メールアドレス</th><td style="{style:value}">{email}</td></tr>
    <tr><th style="{style:label}">ご所属</th><td style="{style:value}">{company}</td></tr>
    {if:department}<tr><th style="{style:label}">部署名</th><td style="{style:value}">{department}</td></tr>{/if:department}
    {if:phone}<tr><th style="{style:label}">電話番号</th><td style="{style:value}">{phone}</td></tr>{/if:phone}
  </table>
  <div style="{style:message}">{message}</div>
  <p>担当者より順次ご連絡させていただきますので、<br>
  今しばらくお待ちくださいませ。</p>
  <hr style="{style:divider}">
  <p style="{style:footer}">
    ※このメールは自動送信されています。<br>
    このメールに返信いただいてもお答えできない場合がございます。
  </p>
</div>
`

const adminText = `新しいお問い合わせを受け付けました。

【受付日時】{submittedAt}
【件名】{subject}
【お名前】{name} 様
【メールアドレス】{email}
{if:company}【会社名】{company}
{/if:company}{if:department}【部署名】{department}
{/if:department}{if:phone}【電話番号】{phone}
{/if:phone}
【お問い合わせ内容】
{message}
`

const adminHTML = `<div style="{style:container}">
  <h2 style="{style:heading}">新しいお問い合わせを受け付けました</h2>
  <table style="{style:table}">
    <tr><th style="{style:label}">受付日時</th><td style="{style:value}">{submittedAt}</td></tr>
    <tr><th style="{style:label}">件名</th><td style="{style:value}">{subject}</td></tr>
    <tr><th style="{style:label}">お名前</th><td style="{style:value}">{name} 様</td></tr>
    <tr><th style="{style:label}">メールアドレス</th><td style="{style:value}">{email}</td></tr>
    {if:company}<tr><th style="{style:label}">会社名</th><td style="{style:value}">{company}</td></tr>{/if:company}
    {if:department}<tr><th style="{style:label}">部署名</th><td style="{style:value}">{department}</td></tr>{/if:department}
    {if:phone}<tr><th style="{style:label}">電話番号</th><td style="{style:value}">{phone}</td></tr>{/if:phone}
  </table>
  <div style="{style:message}">{message}</div>
</div>
`
