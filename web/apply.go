package web

// Apply renders a recruitment form, one control per question.
const Apply = `
{{ define "title" }}{{ .Form.Title }}{{ end }}
{{ define "content" }}
<main class="apply">
	<header>
		{{ with .Form.LogoURL }}<img class="logo" src="{{ . }}" alt="">{{ end }}
		<h1>{{ .Form.Title }}</h1>
		<p class="society">{{ .Form.SocietyName }}</p>
	</header>
	{{ if .AlreadyApplied }}
	<div class="notice info" id="already-applied">You have already applied to this form.</div>
	{{ else }}
	{{ with .Error }}
	<div class="notice error" role="alert">
		{{ . }}
		{{ with $.Details }}<ul>{{ range . }}<li>{{ . }}</li>{{ end }}</ul>{{ end }}
	</div>
	{{ end }}
	<form method="post" action="/apply/{{ .Form.ID }}" enctype="multipart/form-data">
		{{ range .Fields }}
		<div class="field{{ if .Required }} required{{ end }}" data-type="{{ .Control.Element }}">
			<label for="{{ .ID }}">{{ .Number }}. {{ .Label }}{{ if .Required }} <span class="required-mark">*</span>{{ end }}</label>
			{{ if eq .Control.Element "textarea" }}
			<textarea id="{{ .ID }}" name="{{ .Name }}" rows="4" placeholder="{{ .Placeholder }}"{{ if .Required }} required{{ end }}>{{ .Value }}</textarea>
			{{ else if eq .Control.Element "select" }}
			<select id="{{ .ID }}" name="{{ .Name }}"{{ if .Required }} required{{ end }}>
				<option value="">Select an option</option>
				{{ range .Options }}<option value="{{ .Value }}"{{ if .Selected }} selected{{ end }}>{{ .Value }}</option>{{ end }}
			</select>
			{{ else if eq .Control.Element "radio" }}
			{{ $f := . }}
			<div id="{{ .ID }}" role="radiogroup">
				{{ range .Options }}<label><input type="radio" name="{{ $f.Name }}" value="{{ .Value }}"{{ if .Selected }} checked{{ end }}> {{ .Value }}</label>{{ end }}
			</div>
			{{ else if eq .Control.Element "checkbox" }}
			{{ $f := . }}
			<div id="{{ .ID }}" role="group">
				{{ range .Options }}<label><input type="checkbox" name="{{ $f.Name }}" value="{{ .Value }}"{{ if .Selected }} checked{{ end }}> {{ .Value }}</label>{{ end }}
			</div>
			{{ else if eq .Control.InputType "file" }}
			<input id="{{ .ID }}" type="file" name="{{ .Name }}" accept="{{ $.Accept }}"{{ if .Required }} required{{ end }}>
			{{ else }}
			<input id="{{ .ID }}" type="{{ .Control.InputType }}" name="{{ .Name }}" value="{{ .Value }}" placeholder="{{ .Placeholder }}"{{ if .Required }} required{{ end }}>
			{{ end }}
		</div>
		{{ end }}
		<button type="submit">Submit Application</button>
	</form>
	{{ end }}
</main>
{{ end }}
`

// Applied confirms a submission.
const Applied = `
{{ define "title" }}Application submitted{{ end }}
{{ define "content" }}
<main class="applied">
	<h1>Application submitted</h1>
	<p>Your application to <strong>{{ .SocietyName }}</strong>{{ with .FormTitle }} ({{ . }}){{ end }} was received and is now pending review.</p>
</main>
{{ end }}
`
