package web

const Login = `
{{ define "title" }}Log in{{ end }}
{{ define "content" }}
<main class="login">
	<h1>Log in</h1>
	{{ with .Error }}<div class="notice error" role="alert">{{ . }}</div>{{ end }}
	<form method="post" action="/login">
		<input type="hidden" name="goto" value="{{ .Goto }}">
		<div class="field">
			<label for="email">Email</label>
			<input id="email" type="email" name="email" value="{{ .Email }}" required autofocus>
		</div>
		<div class="field">
			<label for="password">Password</label>
			<input id="password" type="password" name="password" required>
		</div>
		<button type="submit">Log in</button>
	</form>
</main>
{{ end }}
`
