// Package assets resolves the site theme: the page templates and the site
// stylesheet.
//
// Every theme file has a built-in version compiled into the binary. A site
// may point the build at a templates directory; files found there replace
// their built-in counterpart one at a time, so a site can ship its own
// post.html and keep the stock index and feed.
//
//	{templates}/
//	├── post.html     # one page per post
//	├── index.html    # post listing
//	├── feed.xml      # RSS feed
//	└── site.css      # replaces the default stylesheet
//
// Override reads go through an [os.Root], so neither ".." nor a symlink can
// reach outside the templates directory.
package assets
