package generation

import (
	"fmt"

	"llmanim/internal/types"
)

const codeFormat = "Return response in this format: (Code: ```html html code ```, ```js javascript code, leave blank if none ```, ```css css code, leave blank if none ```; Explanation: explanations of the code)."

const exampleSnippet = `<!DOCTYPE html>
<html lang="en">
  <head>
    <style>
      html, body { margin: 0; padding: 0; width: 100%; height: 100%; display: flex; justify-content: center; align-items: center; overflow: hidden; }
      svg { width: 100vmin; height: 100vmin; }
    </style>
  </head>
  <body>
    <svg viewBox="0 0 200 200">
      <path id="path1" d="M10,10 Q90,90 180,10" fill="transparent" stroke="black"/>
      <circle id="ball1" cx="0" cy="0" r="5" fill="red"/>
    </svg>
    <script src="https://cdnjs.cloudflare.com/ajax/libs/animejs/3.2.1/anime.min.js"></script>
    <script>
      anime({
        targets: '#ball1',
        translateX: anime.path('#path1')('x'),
        translateY: anime.path('#path1')('y'),
        easing: 'easeInOutQuad',
        duration: 2000,
        loop: true,
        direction: 'alternate'
      });
    </script>
  </body>
</html>`

func generatePrompt(instruction string) string {
	return fmt.Sprintf(`Create an animation using anime.js based on the given instruction. Make the result animation on a square page that can fit and center on any pages. Use customizable svg paths for object movement. You can refer to this code snippet to see example methods and code formats but need to create different code:
Code snippet:
%s
Do not use any external elements like images or svg files, create everything with code.
Make sure to implement as many details from the description as possible, e.g. include elements (eyes, windows) of objects (fish, house), the features (shape, color) and the changes (movement, size, color).
Try to include css and javascript code in html like the code snippet.
%s
Instruction: %s`, exampleSnippet, codeFormat, instruction)
}

func refineCodePrompt(old types.CodeArtifact, oldDescription, newDescription string) string {
	return fmt.Sprintf(`Based on the following old code and its old description, I am showing you an updated description and you will provide an updated code.
Old code: HTML: %s CSS: %s JS: %s
Old description: %s
New description: %s
In the description, words in [] are important entities that must be created by code, and the hints in {} following them specify how to create these entities and animations with code.
Still use anime.js and use customizable svg paths for object movement. Refer to the old code for methods and code formats and refine it according to the new description.
Do not use any external elements like images or svg files, create everything with code.
Try to include css and javascript code in html like the old code.
Modify as little code as possible, keep the original objects and structure, only change the parts updated by the new description.
Unless changed in the description, do not change html and body styles or svg styles in the <style> tag.
%s`, fence("html", old.HTML), fence("css", old.CSS), fence("js", old.JS), oldDescription, newDescription, codeFormat)
}

func annotatePrompt(description string, code types.CodeArtifact) string {
	return fmt.Sprintf(`Based on the following code and description, provide an updated description. Code: HTML: %s CSS: %s JS: %s Description: %s.
Create the updated description by 1) finding important entities in the old description (for example 'planet', 'shape', 'color', 'move' are all entities) and inserting [] around them 2) inserting a detail wrapped in {} behind each entity according to the code (for example the number of planets and each planet's element type, class, style features and name for entity 'planet').
New description format:
xxxxx[entity1]{detail for entity1}xxxx[entity2]{detail for entity2}...
Important: the entities must be within the old description already instead of being newly created. Find as many entities in the old description as possible. Each entity and each detail are wrapped in [] and {} respectively. Other than the two symbols ([], {}) and added details, the updated description should be exactly the same as the old description. Include nothing but the new description in the response.
Example old description: Polygons moving and growing
Example updated description:
[polygons]{two different polygon elements, polygon1 and polygon2 colored red and blue respectively, each defined by three points to form a triangle shape} [moving]{motion defined along path1 and path2} and [growing]{size oscillates between 1 and 2 over a duration of 2000ms with easing}`,
		fence("html", code.HTML), fence("css", code.CSS), fence("js", code.JS), description)
}

func refineDescriptionPrompt(description string, code types.CodeArtifact) string {
	return fmt.Sprintf(`Slightly refine the given description for the code, to make it fit the code better. Code: HTML: %s CSS: %s JS: %s Description: %s.
New description format:
xxxxx[entity1]{detail for entity1}xxxx[entity2]{detail for entity2}...
Important: one [] only contains one entity and one {} only contains one detail. Each entity and each detail are wrapped in [] and {} respectively.
Just as the old description, make sure it is made of coherent sentences with words other than entities and details.
Keep the updated description as close to the old description as possible, only change the parts needed to fit the code better.
Include only the updated description in the response.`,
		fence("html", code.HTML), fence("css", code.CSS), fence("js", code.JS), description)
}

func segmentPrompt(code string) string {
	return fmt.Sprintf(`Split the following code into blocks without changing any character of it.
Insert $$$ between top-level blocks that each create one object or one animation (at least 4 blocks), and inside every block insert @@@ between smaller pieces such as single elements, attributes groups or animation properties (at least 8 pieces in total).
Every line of the code must belong to exactly one piece. Return only the code with the inserted delimiters.
Code:
%s`, code)
}

func expandPrompt(description string, n int) string {
	return fmt.Sprintf(`Help me extend a prompt and add more details. The prompt is for creating animations with anime.js.
Extend the original prompt to make it more expressive, with details that suit the prompt and clearer instructions for the animation code (elements such as eyes or windows of objects such as fish or houses, their features such as shape or color, the changes such as movement, size or color, and how they are made in animation code).
Just add details and descriptions without changing the sentence structure.
Return %d extended prompts in the response divided by ///, and only return these extended prompts.
Make the extended prompts simple and precise. Do not add subjective modifiers or content irrelevant to the original prompt.
Example:
Original prompt:
A fish swimming in ocean
Response:
a blue fish with large eyes and flowing fins swimming straight in blue ocean.
///
a fish with intricate scales, a bright orange body, and a curved tail swimming in waving paths in darkblue ocean.
Extend this prompt: %s`, n, description)
}

func extractParamsPrompt(description string) string {
	return fmt.Sprintf(`Find the text pieces that are about specific code details (e.g. variable name, parameters, size, number, path, coordinates) in the given description of an animation program made by anime.js, and return a list of the found text pieces. Make sure the returned text pieces are exactly from the description. Split the text pieces with ///.
Example description:
A [cottage]{rect element with x: 50, y: 80, width: 100, height: 60, filled in white} perched on a [green mountain]{path element with coordinates "M0 140 L50 100 L100 140 Z", filled in #006400}.
Example response:
with x: 50, y: 80, width: 100, height: 60
///
with coordinates "M0 140 L50 100 L100 140 Z"
///
filled in #006400
Return pieces from this description: %s`, description)
}

func fence(lang, code string) string {
	return "```" + lang + "\n" + code + "\n```"
}
