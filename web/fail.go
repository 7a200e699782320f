package web

const FailPage = `
{{ define "title" }}{{ .StatusText }}{{ end }}
{{ define "content" }}
<main class="fail">
	<h1>{{ .StatusCode }} {{ .StatusText }}</h1>
	<p>{{ .Message }}</p>
</main>
{{ end }}
`
