package deck

// deckTemplate renders one <section> per slide; each slide prints on its own
// landscape page.
const deckTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.DocumentTitle}}</title>
<style>
  :root {
    --bg: #ffffff;
    --text: #1a1a2e;
    --muted: #6b7280;
    --accent: #2563eb;
    --slide-bg: #f8fafc;
  }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    color: var(--text);
    background: var(--bg);
  }
  .slide {
    width: 960px;
    min-height: 540px;
    margin: 24px auto;
    padding: 40px 48px;
    background: var(--slide-bg);
    border: 1px solid #e5e7eb;
    page-break-after: always;
  }
  .slide h2 {
    font-size: 1.6rem;
    margin-bottom: 20px;
    padding-bottom: 8px;
    border-bottom: 3px solid var(--accent);
  }
  .title-slide { display: flex; flex-direction: column; justify-content: center; text-align: center; }
  .title-slide h1 { font-size: 2.2rem; color: var(--accent); margin-bottom: 12px; }
  .title-slide .subtitle { font-size: 1.2rem; color: var(--muted); }
  .summary p, .summary li { font-size: 14pt; line-height: 1.5; margin: 4px 0; }
  .summary ul { padding-left: 20px; }
  .summary blockquote { color: var(--muted); border-left: 3px solid var(--muted); padding-left: 12px; margin-top: 12px; }
  .chart img { display: block; max-width: 100%; height: 400px; margin: 0 auto; }
  .footer { text-align: center; color: var(--muted); font-size: 0.8rem; margin: 16px 0 32px; }
  @media print {
    @page { size: landscape; }
    .slide { margin: 0; border: none; }
  }
</style>
</head>
<body>

<section class="slide title-slide">
  <h1>{{.Title}}</h1>
  <p class="subtitle">{{.Subtitle}}</p>
</section>

<section class="slide summary">
  <h2>Executive Summary</h2>
  {{- range .Summary}}
  {{.}}
  {{- end}}
</section>
{{range .Charts}}
<section class="slide chart">
  <h2>{{.Title}}</h2>
  <img src="{{.Source}}" alt="{{.Title}}">
</section>
{{end}}
<p class="footer">Generated {{.GeneratedAt}}</p>
</body>
</html>
`
