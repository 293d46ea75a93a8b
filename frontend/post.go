package frontend

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

var postTmpl = tmpl(`
	{{ define "title" }}{{ .Post.Title }} &middot; {{ .Blog.Title }}{{ end }}

	{{ define "content" }}
	<article class="blog-blogentry">
		<h2>{{ .Post.Title }}</h2>
		{{ template "metadata" . }}
		{{ with .Post.Excerpt }}
			<p class="blog-blogentry-excerpt">{{ . }}</p>
		{{ end }}
		{{ .Post.BodyHTML }}
	</article>

	{{ if and .DisqusID (.IsPublic .Post) }}
		<div id="disqus_thread"></div>
		<script>
			var disqus_config = function () {
				this.page.identifier = {{ .Post.ID.String }};
			};
			(function() {
				var d = document, s = d.createElement('script');
				s.src = 'https://' + {{ .DisqusID }} + '.disqus.com/embed.js';
				s.setAttribute('data-timestamp', +new Date());
				(d.head || d.body).appendChild(s);
			})();
		</script>
	{{ end }}

	<div class="blog-blogentry-back">
		<a onclick="javascript:window.history.back(); return false;" href="">Back</a>
	</div>
	{{ end }}`)

func post(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	post, err := ctx.db.ViewablePost(ctx.User, params.ByName("slug"))
	if err != nil {
		return err
	}

	return postTmpl.Execute(w, &entry{
		context: ctx,
		Post:    post,
	})
}
